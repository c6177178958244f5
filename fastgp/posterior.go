package fastgp

import (
	"fmt"
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lucasmaystre/gofastgp/kern"
)

// CI is a pointwise Gaussian credible interval.
type CI struct {
	Mean     []float64
	Var      []float64
	Quantile float64
	Low      []float64
	High     []float64
}

func quantile(confidence float64) (float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, fmt.Errorf("confidence %v: %w", confidence, ErrConfidence)
	}
	return distuv.UnitNormal.Quantile(1 - (1-confidence)/2), nil
}

func (gp *FastGP) rows(x mat.Matrix) ([][]float64, error) {
	r, c := x.Dims()
	if r > 0 && c != gp.d {
		return nil, fmt.Errorf("points have %d columns, want %d: %w", c, gp.d, ErrDimension)
	}
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out, nil
}

// crossKernel returns tc[task, l] k(x, X_l) for every task l at horizon n.
func (gp *FastGP) crossKernel(x []float64, task int, n []int, tc *mat.SymDense) [][]float64 {
	d := gp.d
	scale, ls := gp.Scale(), gp.Lengthscales()
	parts := make([]float64, d)
	out := make([][]float64, gp.numTasks)
	for l := range out {
		out[l] = make([]float64, n[l])
		if n[l] == 0 {
			continue
		}
		z, _ := gp.seqs[l].Slice(0, n[l])
		c := tc.At(task, l)
		for i := range out[l] {
			gp.kernel.Parts(parts, x, z[i*d:(i+1)*d])
			out[l][i] = c * kern.FromParts(scale, ls, parts)
		}
	}
	return out
}

func dotTasks(a, b [][]float64) float64 {
	s := 0.0
	for l := range a {
		if len(a[l]) > 0 {
			s += vek.Dot(a[l], b[l])
		}
	}
	return s
}

// PostMean returns the posterior mean of a task at the rows of x.
func (gp *FastGP) PostMean(x mat.Matrix, task int) ([]float64, error) {
	if err := gp.checkTask(task); err != nil {
		return nil, err
	}
	pts, err := gp.rows(x)
	if err != nil {
		return nil, err
	}
	coeffs := gp.coefficients()
	tc := gp.taskCovariance()
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = dotTasks(gp.crossKernel(p, task, gp.n, tc), coeffs)
	}
	return out, nil
}

// PostCov returns the posterior covariance between task0 at the rows of x0
// and task1 at the rows of x1, as it would be with n samples per task (nil
// for the current counts). Only the locations of future samples matter, so
// no observations are needed for them.
func (gp *FastGP) PostCov(x0, x1 mat.Matrix, task0, task1 int, n []int) (*mat.Dense, error) {
	if err := gp.checkTask(task0); err != nil {
		return nil, err
	}
	if err := gp.checkTask(task1); err != nil {
		return nil, err
	}
	nh, err := gp.horizon(n)
	if err != nil {
		return nil, err
	}
	p0, err := gp.rows(x0)
	if err != nil {
		return nil, err
	}
	p1, err := gp.rows(x1)
	if err != nil {
		return nil, err
	}
	if len(p0) == 0 || len(p1) == 0 {
		return &mat.Dense{}, nil
	}
	equal := task0 == task1 && mat.Equal(x0, x1)
	inv := gp.inverse(nh)
	tc := gp.taskCovariance()
	k0 := make([][][]float64, len(p0))
	for a, p := range p0 {
		k0[a] = gp.crossKernel(p, task0, nh, tc)
	}
	k1 := k0
	if !equal {
		k1 = make([][][]float64, len(p1))
		for b, p := range p1 {
			k1[b] = gp.crossKernel(p, task1, nh, tc)
		}
	}
	scale, ls := gp.Scale(), gp.Lengthscales()
	c01 := tc.At(task0, task1)
	out := mat.NewDense(len(p0), len(p1), nil)
	for b := range p1 {
		s := inv.gramSolve(k1[b])
		for a := range p0 {
			// k_new - k_0^T K^-1 k_1
			v := c01*kern.Eval(gp.kernel, scale, ls, p0[a], p1[b]) - dotTasks(k0[a], s)
			if equal && a == b {
				v = math.Max(v, 0)
			}
			out.Set(a, b, v)
		}
	}
	return out, nil
}

// PostVar returns the posterior variance of a task at the rows of x, with n
// as in PostCov.
func (gp *FastGP) PostVar(x mat.Matrix, task int, n []int) ([]float64, error) {
	if err := gp.checkTask(task); err != nil {
		return nil, err
	}
	nh, err := gp.horizon(n)
	if err != nil {
		return nil, err
	}
	pts, err := gp.rows(x)
	if err != nil {
		return nil, err
	}
	inv := gp.inverse(nh)
	tc := gp.taskCovariance()
	scale, ls := gp.Scale(), gp.Lengthscales()
	ctt := tc.At(task, task)
	out := make([]float64, len(pts))
	for i, p := range pts {
		k := gp.crossKernel(p, task, nh, tc)
		v := ctt*kern.Eval(gp.kernel, scale, ls, p, p) - dotTasks(k, inv.gramSolve(k))
		out[i] = math.Max(v, 0)
	}
	return out, nil
}

// PostCI returns the posterior mean, variance and the symmetric credible
// interval at the given confidence level.
func (gp *FastGP) PostCI(x mat.Matrix, task int, confidence float64) (*CI, error) {
	q, err := quantile(confidence)
	if err != nil {
		return nil, err
	}
	mean, err := gp.PostMean(x, task)
	if err != nil {
		return nil, err
	}
	pvar, err := gp.PostVar(x, task, nil)
	if err != nil {
		return nil, err
	}
	ci := &CI{
		Mean:     mean,
		Var:      pvar,
		Quantile: q,
		Low:      make([]float64, len(mean)),
		High:     make([]float64, len(mean)),
	}
	for i, m := range mean {
		s := math.Sqrt(pvar[i])
		ci.Low[i] = m - q*s
		ci.High[i] = m + q*s
	}
	return ci, nil
}
