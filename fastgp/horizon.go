package fastgp

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/lucasmaystre/gofastgp/utils"
)

// horizon validates per-task sample counts for a query. A nil n means the
// current counts.
func (gp *FastGP) horizon(n []int) ([]int, error) {
	if n == nil {
		return slices.Clone(gp.n), nil
	}
	if len(n) != gp.numTasks {
		return nil, fmt.Errorf("horizon has %d entries for %d tasks: %w", len(n), gp.numTasks, ErrInvalidShape)
	}
	for t, v := range n {
		if v != 0 && !utils.IsPow2(v) {
			return nil, fmt.Errorf("horizon %d for task %d: %w", v, t, ErrNotPowerOfTwo)
		}
		if v < gp.n[t] {
			return nil, fmt.Errorf("horizon %d below %d samples of task %d: %w", v, gp.n[t], t, ErrHorizon)
		}
	}
	return slices.Clone(n), nil
}

// inverse returns the factorization cache for horizon n, and drops the
// caches of horizons that fell below the current sample counts.
func (gp *FastGP) inverse(n []int) *inverseCache {
	key := horizonKey(n)
	c, ok := gp.invs.Get(key)
	if !ok {
		c = newInverseCache(gp, n)
		gp.invs.Add(key, c)
	}
	for _, k := range gp.invs.Keys() {
		if v, ok := gp.invs.Peek(k); ok && v.stale(gp.n) {
			gp.invs.Remove(k)
			gp.logger.Debug("horizon evicted", zap.String("n", k))
		}
	}
	return c
}

// Inverse is the factored joint covariance of the observations at a fixed
// sample count horizon.
type Inverse struct {
	c *inverseCache
}

// InverseLogDet returns the factorization at horizon n, nil meaning the
// current sample counts.
func (gp *FastGP) InverseLogDet(n []int) (*Inverse, error) {
	nh, err := gp.horizon(n)
	if err != nil {
		return nil, err
	}
	return &Inverse{c: gp.inverse(nh)}, nil
}

// N returns the horizon.
func (inv *Inverse) N() []int {
	return slices.Clone(inv.c.n)
}

// LogDet returns log |K|.
func (inv *Inverse) LogDet() float64 {
	return inv.c.logdet()
}

// Solve returns K^-1 y, with y and the result split by task.
func (inv *Inverse) Solve(y [][]float64) ([][]float64, error) {
	if len(y) != len(inv.c.n) {
		return nil, fmt.Errorf("%d vectors for %d tasks: %w", len(y), len(inv.c.n), ErrInvalidShape)
	}
	for t, v := range y {
		if len(v) != inv.c.n[t] {
			return nil, fmt.Errorf("task %d has %d values, want %d: %w", t, len(v), inv.c.n[t], ErrInvalidShape)
		}
	}
	return inv.c.gramSolve(y), nil
}
