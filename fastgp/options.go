package fastgp

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/lucasmaystre/gofastgp/param"
	"github.com/lucasmaystre/gofastgp/seq"
)

// Family selects the structured design and its matching kernel.
type Family int

const (
	Lattice Family = iota
	DigitalNet
)

func (f Family) String() string {
	switch f {
	case Lattice:
		return "lattice"
	case DigitalNet:
		return "digital_net"
	}
	return "unknown"
}

func ParseFamily(s string) (Family, error) {
	switch s {
	case "lattice":
		return Lattice, nil
	case "digital_net", "digitalnet":
		return DigitalNet, nil
	}
	return 0, ErrFamily
}

type options struct {
	numTasks       int
	seed           uint64
	alpha          int
	scale          float64
	lengthscales   []float64
	noise          float64
	factor         *mat.Dense
	rank           int
	noiseTask      []float64
	transforms     map[param.Name]param.Transform
	optimize       map[param.Name]bool
	debug          bool
	forceRecompile bool
	logger         *zap.Logger
	generators     []seq.Generator
	maxHorizons    int
}

func defaultOptions(family Family) *options {
	noise := 1e-8
	if family == DigitalNet {
		noise = 1e-16
	}
	return &options{
		numTasks:     1,
		alpha:        2,
		scale:        1,
		lengthscales: []float64{1},
		noise:        noise,
		rank:         -1,
		noiseTask:    []float64{1},
		transforms: map[param.Name]param.Transform{
			param.Scale:            param.Log{},
			param.Lengthscales:     param.Log{},
			param.Noise:            param.Log{},
			param.FactorTaskKernel: param.Identity{},
			param.NoiseTaskKernel:  param.Log{},
		},
		optimize:    map[param.Name]bool{},
		logger:      zap.NewNop(),
		maxHorizons: 16,
	}
}

// Option configures a model at construction.
type Option func(*options)

func WithNumTasks(n int) Option {
	return func(o *options) { o.numTasks = n }
}

// WithSeed seeds the random shifts of the per-task sequences.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithAlpha sets the kernel smoothness.
func WithAlpha(alpha int) Option {
	return func(o *options) { o.alpha = alpha }
}

func WithScale(scale float64) Option {
	return func(o *options) { o.scale = scale }
}

// WithLengthscales sets one lengthscale per dimension, or a single value
// shared by all of them.
func WithLengthscales(ls ...float64) Option {
	return func(o *options) { o.lengthscales = ls }
}

func WithNoise(noise float64) Option {
	return func(o *options) { o.noise = noise }
}

// WithFactorTaskKernel sets the num_tasks x rank factor F of the task
// covariance F F^T + diag(v).
func WithFactorTaskKernel(f *mat.Dense) Option {
	return func(o *options) { o.factor = f }
}

// WithRank sets the rank of a default all-ones task factor.
func WithRank(rank int) Option {
	return func(o *options) { o.rank = rank }
}

func WithNoiseTaskKernel(v ...float64) Option {
	return func(o *options) { o.noiseTask = v }
}

// WithTransform sets the raw parameterization of a hyperparameter.
func WithTransform(name param.Name, tf param.Transform) Option {
	return func(o *options) { o.transforms[name] = tf }
}

// WithOptimize selects whether fit optimises a hyperparameter.
func WithOptimize(name param.Name, on bool) Option {
	return func(o *options) { o.optimize[name] = on }
}

// WithDebug cross-checks every fast computation against a direct one.
func WithDebug(on bool) Option {
	return func(o *options) { o.debug = on }
}

// WithForceRecompile disables hyperparameter snapshot reuse in all caches.
func WithForceRecompile(on bool) Option {
	return func(o *options) { o.forceRecompile = on }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGenerators supplies one point generator per task instead of the
// seeded defaults.
func WithGenerators(gens ...seq.Generator) Option {
	return func(o *options) { o.generators = gens }
}

// WithMaxHorizons bounds the number of sample count horizons whose
// factorizations are kept.
func WithMaxHorizons(n int) Option {
	return func(o *options) { o.maxHorizons = n }
}
