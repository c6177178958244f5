package fastgp

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/lucasmaystre/gofastgp/kern"
	"github.com/lucasmaystre/gofastgp/utils"
)

// denseGram assembles the joint covariance at horizon n explicitly. Block
// (a, b) is tc[a, b] K(X_a, X_b), plus tc[a, a] noise I on the diagonal
// blocks.
func (gp *FastGP) denseGram(n []int) *mat.SymDense {
	tc := gp.taskCovariance()
	scale, ls, noise := gp.Scale(), gp.Lengthscales(), gp.Noise()
	xs := make([]*mat.Dense, gp.numTasks)
	var nugget []mat.Matrix
	for t := range xs {
		xs[t] = gp.seqs[t].Matrix(0, n[t])
		if n[t] > 0 {
			eye := utils.Eye(n[t])
			eye.Scale(tc.At(t, t)*noise, eye)
			nugget = append(nugget, eye)
		}
	}
	full := utils.BlockMatrix(n, n, func(a, b int) mat.Matrix {
		km, err := kern.Matrix(gp.kernel, scale, ls, xs[a], xs[b])
		if err != nil {
			panic(err)
		}
		km.Scale(tc.At(a, b), km)
		return km
	})
	if full.IsEmpty() {
		return &mat.SymDense{}
	}
	full.Add(full, utils.BlockDiag(nugget...))
	N, _ := full.Dims()
	out := mat.NewSymDense(N, nil)
	for i := 0; i < N; i++ {
		for j := i; j < N; j++ {
			out.SetSym(i, j, full.At(i, j))
		}
	}
	return out
}

func stack(v [][]float64) *mat.VecDense {
	vecs := make([]*mat.VecDense, len(v))
	for t, x := range v {
		vecs[t] = &mat.VecDense{}
		if len(x) > 0 {
			vecs[t] = mat.NewVecDense(len(x), x)
		}
	}
	return utils.ConcatVecs(vecs...)
}

func relClose(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b))
}

// checkDense compares the log determinant with a dense Cholesky.
func (c *inverseCache) checkDense(inv *blockInverse) {
	K := c.gp.denseGram(c.n)
	if K.IsEmpty() {
		return
	}
	var chol mat.Cholesky
	if !chol.Factorize(K) {
		c.gp.logger.Warn("dense reference is not positive definite", zap.Ints("n", c.n))
		return
	}
	if want := chol.LogDet(); !relClose(inv.logdet, want, 1e-4) {
		c.gp.logger.Error("log determinant mismatch",
			zap.Ints("n", c.n), zap.Float64("fast", inv.logdet), zap.Float64("dense", want))
		panic(ErrDebugMismatch)
	}
}

// checkSolve compares a fast solve with a dense Cholesky solve.
func (c *inverseCache) checkSolve(y, z [][]float64) {
	K := c.gp.denseGram(c.n)
	if K.IsEmpty() {
		return
	}
	var chol mat.Cholesky
	if !chol.Factorize(K) {
		return
	}
	rhs, got := stack(y), stack(z)
	var want mat.VecDense
	if err := chol.SolveVecTo(&want, rhs); err != nil {
		return
	}
	scale := math.Max(1, mat.Norm(&want, math.Inf(1)))
	for i := 0; i < want.Len(); i++ {
		if math.Abs(want.AtVec(i)-got.AtVec(i)) > 1e-3*scale {
			c.gp.logger.Error("gram solve mismatch", zap.Ints("n", c.n), zap.Int("index", i))
			panic(ErrDebugMismatch)
		}
	}
}
