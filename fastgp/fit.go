package fastgp

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/lucasmaystre/gofastgp/fitters"
	"github.com/lucasmaystre/gofastgp/param"
)

// FitOptions controls hyperparameter optimisation.
type FitOptions struct {
	Iterations int
	// Optimizer defaults to Rprop with learning rate LR.
	Optimizer fitters.Optimizer
	LR        float64
	// Progress is logged every Verbose iterations, never if zero.
	Verbose int
	// Optimisation stops once the best NMLL has not improved by more than
	// log(1 + threshold) during the given number of iterations.
	StopCritImprovementThreshold float64
	StopCritWaitIterations       int

	StoreMLL          bool
	StoreScale        bool
	StoreLengthscales bool
	StoreNoise        bool
}

func DefaultFitOptions() FitOptions {
	return FitOptions{
		Iterations:                   5000,
		LR:                           0.1,
		Verbose:                      1,
		StopCritImprovementThreshold: 1,
		StopCritWaitIterations:       10,
	}
}

// Reasons for the end of a fit.
const (
	StopIterations = "iterations"
	StopNoProgress = "no improvement"
	StopConverged  = "parameters unchanged"
)

// FitHistory holds the traces requested through the Store flags, one entry
// per evaluated iterate. Traces of parameters that are not optimised stay
// nil.
type FitHistory struct {
	MLL          []float64
	Scale        []float64
	Lengthscales [][]float64
	Noise        []float64
	BestMLL      float64
	Iterations   int
	Reason       string
}

// nmll returns y^T K^-1 y + log|K| + N log(2 pi) at the current samples.
func (gp *FastGP) nmll() float64 {
	inv := gp.inverse(gp.n)
	yt := make([][]complex128, gp.numTasks)
	for t := range yt {
		yt[t] = []complex128{}
		if gp.n[t] > 0 {
			yt[t] = gp.ytildes[t].get()
		}
	}
	zt := inv.solveTilde(yt)
	fit := 0.0
	for t, v := range yt {
		for i, a := range v {
			fit += real(cmplx.Conj(a) * zt[t][i])
		}
	}
	return fit + inv.logdet() + float64(gp.total())*math.Log(2*math.Pi)
}

// NMLL returns the negative marginal log-likelihood, up to a factor of two,
// of the observations.
func (gp *FastGP) NMLL() (float64, error) {
	if gp.total() == 0 {
		return 0, ErrNoData
	}
	return gp.nmll(), nil
}

func (gp *FastGP) total() int {
	s := 0
	for _, v := range gp.n {
		s += v
	}
	return s
}

func (o *FitOptions) validate() error {
	switch {
	case o.Iterations < 0:
		return fmt.Errorf("iterations %d: %w", o.Iterations, ErrNonPositive)
	case o.Optimizer == nil && !(o.LR > 0):
		return fmt.Errorf("learning rate %v: %w", o.LR, ErrNonPositive)
	case o.Verbose < 0:
		return fmt.Errorf("verbose %d: %w", o.Verbose, ErrNonPositive)
	case o.StopCritImprovementThreshold < 0:
		return fmt.Errorf("improvement threshold %v: %w", o.StopCritImprovementThreshold, ErrNonPositive)
	case o.StopCritWaitIterations < 1:
		return fmt.Errorf("wait iterations %d: %w", o.StopCritWaitIterations, ErrNonPositive)
	}
	return nil
}

// Fit minimises the NMLL over the raw values of the optimised
// hyperparameters. Gradients are central finite differences.
func (gp *FastGP) Fit(opts FitOptions) (*FitHistory, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if gp.total() == 0 {
		return nil, ErrNoData
	}
	opt := opts.Optimizer
	if opt == nil {
		opt = fitters.NewRprop(opts.LR)
	}
	opt.Reset()
	hp := gp.hp
	storeScale := opts.StoreScale && hp.Get(param.Scale).Optimize
	storeLs := opts.StoreLengthscales && hp.Get(param.Lengthscales).Optimize
	storeNoise := opts.StoreNoise && hp.Get(param.Noise).Optimize

	objective := func(raw []float64) float64 {
		hp.SetRaw(raw)
		return gp.nmll()
	}
	settings := &fd.Settings{Formula: fd.Central}
	x := hp.Raw()
	grad := make([]float64, len(x))
	logtol := math.Log1p(opts.StopCritImprovementThreshold)
	best, saved := math.Inf(1), math.Inf(1)
	wait := 0
	hist := &FitHistory{}
	for i := 0; ; i++ {
		mll := gp.nmll()
		if mll < best {
			best = mll
		}
		if saved-best > logtol {
			wait = 0
			saved = best
		} else {
			wait++
		}
		if opts.StoreMLL {
			hist.MLL = append(hist.MLL, mll)
		}
		if storeScale {
			hist.Scale = append(hist.Scale, gp.Scale())
		}
		if storeLs {
			hist.Lengthscales = append(hist.Lengthscales, gp.Lengthscales())
		}
		if storeNoise {
			hist.Noise = append(hist.Noise, gp.Noise())
		}
		hist.Iterations = i
		if opts.Verbose > 0 && i%opts.Verbose == 0 {
			gp.logger.Info("fit",
				zap.Int("iteration", i),
				zap.Float64("nmll", mll),
				zap.Float64("scale", gp.Scale()),
				zap.Float64s("lengthscales", gp.Lengthscales()),
				zap.Float64("noise", gp.Noise()),
				zap.Float64s("task_cov", gp.TaskCovariance().RawSymmetric().Data))
		}
		if i == opts.Iterations {
			hist.Reason = StopIterations
			break
		}
		if wait == opts.StopCritWaitIterations {
			hist.Reason = StopNoProgress
			break
		}
		if len(x) == 0 {
			hist.Reason = StopConverged
			break
		}
		fd.Gradient(grad, objective, x, settings)
		prev := slices.Clone(x)
		opt.Step(x, grad)
		hp.SetRaw(x)
		if floats.Equal(prev, x) {
			hist.Reason = StopConverged
			break
		}
	}
	hist.BestMLL = best
	gp.logger.Info("fit done",
		zap.String("reason", hist.Reason),
		zap.Int("iterations", hist.Iterations),
		zap.Float64("best_nmll", best))
	return hist, nil
}
