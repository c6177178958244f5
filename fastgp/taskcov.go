package fastgp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/lucasmaystre/gofastgp/param"
)

// taskCovariance returns the cached F F^T + diag(v).
func (gp *FastGP) taskCovariance() *mat.SymDense {
	snap := gp.hp.TaskSnapshot()
	if gp.taskCov.fresh(snap, gp.forceRecompile) {
		return gp.taskCov.value
	}
	nt, rank := gp.numTasks, gp.hp.Rank
	cov := mat.NewSymDense(nt, nil)
	if rank > 0 {
		f := mat.NewDense(nt, rank, gp.hp.Get(param.FactorTaskKernel).Values())
		cov.SymOuterK(1, f)
	}
	for i, v := range gp.hp.Get(param.NoiseTaskKernel).Values() {
		cov.SetSym(i, i, cov.At(i, i)+v)
	}
	gp.taskCov.set(cov, snap)
	return cov
}
