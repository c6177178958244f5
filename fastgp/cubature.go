package fastgp

import (
	"math"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
)

// CubatureCI is a credible interval for the integral of a task over the unit
// cube.
type CubatureCI struct {
	Mean     float64
	Var      float64
	Quantile float64
	Low      float64
	High     float64
}

// integralWeights returns the integrals of tc[task, l] k(., x_i) over the
// unit cube, one vector per task l. Every kernel part integrates to zero,
// so each integral equals the scale.
func (gp *FastGP) integralWeights(task int, n []int, tc *mat.SymDense) [][]float64 {
	scale := gp.Scale()
	out := make([][]float64, gp.numTasks)
	for l := range out {
		w := scale * tc.At(task, l)
		out[l] = make([]float64, n[l])
		for i := range out[l] {
			out[l][i] = w
		}
	}
	return out
}

// PostCubatureMean returns the posterior mean of the integral of a task over
// the unit cube.
func (gp *FastGP) PostCubatureMean(task int) (float64, error) {
	if err := gp.checkTask(task); err != nil {
		return 0, err
	}
	coeffs := gp.coefficients()
	tc := gp.taskCovariance()
	mean := 0.0
	for l, c := range coeffs {
		if len(c) > 0 {
			mean += tc.At(task, l) * vek.Sum(c)
		}
	}
	return gp.Scale() * mean, nil
}

// PostCubatureCov returns the posterior covariance between the integrals of
// two tasks at horizon n, nil meaning the current counts.
func (gp *FastGP) PostCubatureCov(task0, task1 int, n []int) (float64, error) {
	if err := gp.checkTask(task0); err != nil {
		return 0, err
	}
	if err := gp.checkTask(task1); err != nil {
		return 0, err
	}
	nh, err := gp.horizon(n)
	if err != nil {
		return 0, err
	}
	inv := gp.inverse(nh)
	tc := gp.taskCovariance()
	w0 := gp.integralWeights(task0, nh, tc)
	w1 := w0
	if task1 != task0 {
		w1 = gp.integralWeights(task1, nh, tc)
	}
	return gp.Scale()*tc.At(task0, task1) - dotTasks(w0, inv.gramSolve(w1)), nil
}

// PostCubatureVar returns the posterior variance of the integral of a task,
// clamped at zero.
func (gp *FastGP) PostCubatureVar(task int, n []int) (float64, error) {
	v, err := gp.PostCubatureCov(task, task, n)
	if err != nil {
		return 0, err
	}
	return math.Max(v, 0), nil
}

// PostCubatureCI returns the posterior mean and variance of the integral of
// a task with its symmetric credible interval.
func (gp *FastGP) PostCubatureCI(task int, confidence float64) (*CubatureCI, error) {
	q, err := quantile(confidence)
	if err != nil {
		return nil, err
	}
	mean, err := gp.PostCubatureMean(task)
	if err != nil {
		return nil, err
	}
	v, err := gp.PostCubatureVar(task, nil)
	if err != nil {
		return nil, err
	}
	s := math.Sqrt(v)
	return &CubatureCI{
		Mean:     mean,
		Var:      v,
		Quantile: q,
		Low:      mean - q*s,
		High:     mean + q*s,
	}, nil
}
