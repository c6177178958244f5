package fastgp

import (
	"slices"
)

// coefficients returns K^-1 y at the current sample counts, split by task.
func (gp *FastGP) coefficients() [][]float64 {
	snap := gp.hp.Snapshot()
	for _, v := range gp.n {
		snap = append(snap, float64(v))
	}
	if gp.coeffs.fresh(snap, gp.forceRecompile) {
		return gp.coeffs.value
	}
	c := gp.inverse(gp.n).gramSolve(gp.y)
	gp.coeffs.set(c, snap)
	return c
}

// Coefficients returns the regression weights K^-1 y of every task.
func (gp *FastGP) Coefficients() [][]float64 {
	c := gp.coefficients()
	out := make([][]float64, len(c))
	for t, v := range c {
		out[t] = slices.Clone(v)
	}
	return out
}
