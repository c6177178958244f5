package fastgp

import (
	"go.uber.org/zap"

	"github.com/lucasmaystre/gofastgp/kern"
	"github.com/lucasmaystre/gofastgp/param"
	"github.com/lucasmaystre/gofastgp/transform"
)

// lamCache holds, for the task pair (l0, l1), the transforms of the kernel
// column of task l0 against the first point of task l1 at resolutions
// 2^mMin, 2^(mMin+1), .... Levels below the current level of task l0 are
// dropped since the design never shrinks.
type lamCache struct {
	gp     *FastGP
	l0, l1 int
	mMin   int
	levels []frozen[[]complex128]
}

// get returns the eigenvalues at resolution 2^m, which may not be below
// the current level of task l0.
func (c *lamCache) get(m int) []complex128 {
	if m < 0 || m < c.gp.m[c.l0] {
		panic(ErrStaleLevel)
	}
	lam := c.level(m)
	for c.mMin < c.gp.m[c.l0] && len(c.levels) > 1 {
		c.levels[0].reset()
		c.levels = c.levels[1:]
		c.mMin++
	}
	return lam
}

func (c *lamCache) level(m int) []complex128 {
	snap := c.gp.hp.KernelSnapshot()
	switch {
	case c.mMin == -1:
		c.mMin = m
		c.levels = make([]frozen[[]complex128], 1, 8)
	case m < c.mMin:
		// Not requested so far, but still above the retention floor.
		pad := make([]frozen[[]complex128], c.mMin-m, c.mMin-m+len(c.levels))
		c.levels = append(pad, c.levels...)
		c.mMin = m
	}
	for len(c.levels) <= m-c.mMin {
		c.levels = append(c.levels, frozen[[]complex128]{})
	}
	if lv := &c.levels[m-c.mMin]; lv.fresh(snap, c.gp.forceRecompile) {
		return lv.value
	}
	var lam []complex128
	if m == c.mMin {
		lam = c.direct(m)
	} else {
		// lam_m = [lam_{m-1} + w lam_half, lam_{m-1} - w lam_half] / sqrt(2)
		prev := c.level(m - 1)
		half := transform.Forward(c.gp.tf, c.column(1<<(m-1), 1<<m))
		lam = transform.Double(c.gp.tf, prev, half)
		if c.gp.debug {
			if diff := transform.MaxAbsDiff(lam, c.direct(m)); diff > 1e-7 {
				c.gp.logger.Error("eigenvalue recursion mismatch",
					zap.Int("task0", c.l0), zap.Int("task1", c.l1), zap.Int("m", m), zap.Float64("diff", diff))
				panic(ErrDebugMismatch)
			}
		}
	}
	c.gp.logger.Debug("eigenvalues recomputed",
		zap.Int("task0", c.l0), zap.Int("task1", c.l1), zap.Int("m", m))
	c.levels[m-c.mMin].set(lam, snap)
	return lam
}

// direct transforms the full kernel column at resolution 2^m.
func (c *lamCache) direct(m int) []complex128 {
	k1 := c.column(0, 1<<m)
	if c.l0 == c.l1 {
		k1[0] += complex(c.gp.Noise(), 0)
	}
	return transform.Forward(c.gp.tf, k1)
}

// column returns k(x_i, z_0) for points lo, ..., hi-1 of task l0 against the
// first point of task l1.
func (c *lamCache) column(lo, hi int) []complex128 {
	d := c.gp.d
	parts := c.gp.kparts[c.l0][c.l1].get(hi)
	scale := c.gp.hp.Get(param.Scale).Value()
	ls := c.gp.hp.Get(param.Lengthscales).Values()
	out := make([]complex128, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = complex(kern.FromParts(scale, ls, parts[i*d:(i+1)*d]), 0)
	}
	return out
}
