// Package fastgp implements Gaussian process regression on lattices and
// digital nets, where fast transforms diagonalize the kernel matrices and
// exact inference costs O(n log n). Several tasks can be coupled through a
// low-rank task covariance.
package fastgp

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/lucasmaystre/gofastgp/kern"
	"github.com/lucasmaystre/gofastgp/param"
	"github.com/lucasmaystre/gofastgp/seq"
	"github.com/lucasmaystre/gofastgp/transform"
	"github.com/lucasmaystre/gofastgp/utils"
)

// FastGP is a multi-task Gaussian process on structured designs. The
// sample count of every task is zero or a power of two, and only grows.
// A FastGP is not safe for concurrent use.
type FastGP struct {
	family   Family
	d        int
	numTasks int
	kernel   kern.Kernel
	tf       transform.Transform
	seqs     []*seq.Sequence
	hp       *param.Hyperparameters

	y [][]float64
	n []int
	m []int

	kparts  [][]*kpartsCache
	lams    [][]*lamCache
	ytildes []*ytildeCache
	taskCov frozen[*mat.SymDense]
	coeffs  frozen[[][]float64]
	invs    *lru.Cache[string, *inverseCache]

	id             uuid.UUID
	debug          bool
	forceRecompile bool
	logger         *zap.Logger
}

// NewLattice returns a model on shifted rank-1 lattices with the Korobov
// kernel.
func NewLattice(d int, opts ...Option) (*FastGP, error) {
	return New(Lattice, d, opts...)
}

// NewDigitalNet returns a model on digitally shifted Sobol' nets with a
// Walsh kernel.
func NewDigitalNet(d int, opts ...Option) (*FastGP, error) {
	return New(DigitalNet, d, opts...)
}

func New(family Family, d int, opts ...Option) (*FastGP, error) {
	o := defaultOptions(family)
	for _, opt := range opts {
		opt(o)
	}
	if d < 1 {
		return nil, fmt.Errorf("dimension %d: %w", d, ErrDimension)
	}
	if o.numTasks < 1 {
		return nil, fmt.Errorf("num tasks %d: %w", o.numTasks, ErrInvalidShape)
	}
	id := uuid.New()
	gp := &FastGP{
		id:             id,
		family:         family,
		d:              d,
		numTasks:       o.numTasks,
		y:              make([][]float64, o.numTasks),
		n:              make([]int, o.numTasks),
		m:              make([]int, o.numTasks),
		debug:          o.debug,
		forceRecompile: o.forceRecompile,
		logger:         o.logger.Named("fastgp").With(zap.Stringer("model", id)),
	}
	var err error
	switch family {
	case Lattice:
		gp.kernel, err = kern.NewShiftInvariant(d, o.alpha)
		gp.tf = transform.NewBitReversedFourier()
	case DigitalNet:
		gp.kernel, err = kern.NewDigitalShiftInvariant(d, o.alpha)
		gp.tf = transform.Walsh{}
	default:
		return nil, ErrFamily
	}
	if err != nil {
		return nil, fmt.Errorf("alpha %d: %w", o.alpha, err)
	}
	if err := gp.initSequences(o); err != nil {
		return nil, err
	}
	if gp.hp, err = newHyperparameters(d, o); err != nil {
		return nil, err
	}
	if o.maxHorizons < 1 {
		return nil, fmt.Errorf("max horizons %d: %w", o.maxHorizons, ErrNonPositive)
	}
	if gp.invs, err = lru.New[string, *inverseCache](o.maxHorizons); err != nil {
		return nil, err
	}
	nt := gp.numTasks
	gp.kparts = make([][]*kpartsCache, nt)
	gp.lams = make([][]*lamCache, nt)
	gp.ytildes = make([]*ytildeCache, nt)
	for l0 := 0; l0 < nt; l0++ {
		gp.m[l0] = -1
		gp.y[l0] = make([]float64, 0, 16)
		gp.kparts[l0] = make([]*kpartsCache, nt)
		gp.lams[l0] = make([]*lamCache, nt)
		for l1 := 0; l1 < nt; l1++ {
			gp.kparts[l0][l1] = &kpartsCache{gp: gp, l0: l0, l1: l1}
			gp.lams[l0][l1] = &lamCache{gp: gp, l0: l0, l1: l1, mMin: -1}
		}
		gp.ytildes[l0] = &ytildeCache{gp: gp, l: l0}
	}
	return gp, nil
}

func (gp *FastGP) initSequences(o *options) error {
	gens := o.generators
	if gens == nil {
		gens = make([]seq.Generator, gp.numTasks)
		for l := range gens {
			rng := rand.New(rand.NewPCG(o.seed, uint64(l)))
			var err error
			switch gp.family {
			case Lattice:
				gens[l], err = seq.NewLattice(gp.d, rng)
			case DigitalNet:
				gens[l], err = seq.NewDigitalNet(gp.d, rng)
			}
			if err != nil {
				return fmt.Errorf("dimension %d: %w", gp.d, ErrDimension)
			}
		}
	}
	if len(gens) != gp.numTasks {
		return fmt.Errorf("%d generators for %d tasks: %w", len(gens), gp.numTasks, ErrInvalidShape)
	}
	gp.seqs = make([]*seq.Sequence, gp.numTasks)
	for l, g := range gens {
		if g.Dim() != gp.d {
			return fmt.Errorf("generator %d has dimension %d: %w", l, g.Dim(), ErrDimension)
		}
		gp.seqs[l] = seq.NewSequence(g)
	}
	return nil
}

func newHyperparameters(d int, o *options) (*param.Hyperparameters, error) {
	nt := o.numTasks
	ls, err := broadcast(o.lengthscales, d)
	if err != nil {
		return nil, fmt.Errorf("lengthscales: %w", err)
	}
	vt, err := broadcast(o.noiseTask, nt)
	if err != nil {
		return nil, fmt.Errorf("noise task kernel: %w", err)
	}
	factor := o.factor
	if factor == nil {
		rank := o.rank
		if rank < 0 {
			rank = 0
			if nt > 1 {
				rank = 1
			}
		}
		if rank > nt {
			return nil, fmt.Errorf("rank %d: %w", rank, ErrInvalidShape)
		}
		if rank > 0 {
			factor = mat.NewDense(nt, rank, nil)
			for i := 0; i < nt; i++ {
				for j := 0; j < rank; j++ {
					factor.Set(i, j, 1)
				}
			}
		}
	}
	rank, fvals := 0, []float64{}
	if factor != nil && !factor.IsEmpty() {
		r, c := factor.Dims()
		if r != nt || c > nt {
			return nil, fmt.Errorf("factor task kernel %dx%d: %w", r, c, ErrInvalidShape)
		}
		rank = c
		fvals = denseValues(factor)
	}
	multi := nt > 1
	build := func(name param.Name, vals []float64, positive, optimize bool) (*param.Param, error) {
		if on, ok := o.optimize[name]; ok {
			optimize = on
		}
		p, err := param.NewParam(vals, o.transforms[name], positive, optimize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, wrapParamErr(err))
		}
		return p, nil
	}
	scale, err := build(param.Scale, []float64{o.scale}, true, true)
	if err != nil {
		return nil, err
	}
	lengthscales, err := build(param.Lengthscales, ls, true, true)
	if err != nil {
		return nil, err
	}
	noise, err := build(param.Noise, []float64{o.noise}, true, false)
	if err != nil {
		return nil, err
	}
	fac, err := build(param.FactorTaskKernel, fvals, false, multi && rank > 0)
	if err != nil {
		return nil, err
	}
	noiseTask, err := build(param.NoiseTaskKernel, vt, true, multi)
	if err != nil {
		return nil, err
	}
	return param.NewHyperparameters(scale, lengthscales, noise, fac, noiseTask, rank), nil
}

func broadcast(v []float64, n int) ([]float64, error) {
	switch len(v) {
	case n:
		return slices.Clone(v), nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	}
	return nil, ErrInvalidShape
}

func denseValues(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}

func wrapParamErr(err error) error {
	switch err {
	case param.ErrNonPositive, param.ErrNotFinite:
		return fmt.Errorf("%w (%v)", ErrNonPositive, err)
	case param.ErrShape:
		return fmt.Errorf("%w (%v)", ErrInvalidShape, err)
	}
	return err
}

// ID identifies the model in log entries.
func (gp *FastGP) ID() uuid.UUID {
	return gp.id
}

func (gp *FastGP) Family() Family {
	return gp.family
}

func (gp *FastGP) Dim() int {
	return gp.d
}

func (gp *FastGP) NumTasks() int {
	return gp.numTasks
}

// N returns the current sample count of every task.
func (gp *FastGP) N() []int {
	return slices.Clone(gp.n)
}

// X returns the observed sample locations of a task.
func (gp *FastGP) X(task int) (*mat.Dense, error) {
	if err := gp.checkTask(task); err != nil {
		return nil, err
	}
	return gp.seqs[task].Matrix(0, gp.n[task]), nil
}

// Y returns the observed values of a task.
func (gp *FastGP) Y(task int) ([]float64, error) {
	if err := gp.checkTask(task); err != nil {
		return nil, err
	}
	return slices.Clone(gp.y[task]), nil
}

func (gp *FastGP) checkTask(task int) error {
	if task < 0 || task >= gp.numTasks {
		return fmt.Errorf("task %d of %d: %w", task, gp.numTasks, ErrTaskIndex)
	}
	return nil
}

func (gp *FastGP) taskList(tasks []int, count int) ([]int, error) {
	if tasks == nil {
		tasks = make([]int, gp.numTasks)
		for i := range tasks {
			tasks[i] = i
		}
	}
	if len(tasks) != count {
		return nil, fmt.Errorf("%d tasks for %d inputs: %w", len(tasks), count, ErrInvalidShape)
	}
	for _, t := range tasks {
		if err := gp.checkTask(t); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// GetXNext returns the locations that bring each listed task to n[i]
// samples. A nil task list means every task in order. Only the points not
// yet observed are returned.
func (gp *FastGP) GetXNext(n []int, tasks []int) ([]*mat.Dense, error) {
	tasks, err := gp.taskList(tasks, len(n))
	if err != nil {
		return nil, err
	}
	for i, t := range tasks {
		if n[i] != 0 && !utils.IsPow2(n[i]) {
			return nil, fmt.Errorf("n = %d: %w", n[i], ErrNotPowerOfTwo)
		}
		if n[i] < gp.n[t] {
			return nil, fmt.Errorf("task %d has %d samples, requested %d: %w", t, gp.n[t], n[i], ErrHorizon)
		}
	}
	out := make([]*mat.Dense, len(tasks))
	for i, t := range tasks {
		out[i] = gp.seqs[t].Matrix(gp.n[t], n[i])
	}
	return out, nil
}

// AddYNext appends observations at the next locations of the listed tasks.
// The resulting sample counts must be zero or powers of two; otherwise
// nothing is added.
func (gp *FastGP) AddYNext(y [][]float64, tasks []int) error {
	tasks, err := gp.taskList(tasks, len(y))
	if err != nil {
		return err
	}
	counts := slices.Clone(gp.n)
	for i, t := range tasks {
		counts[t] += len(y[i])
	}
	for t, c := range counts {
		if c != 0 && !utils.IsPow2(c) {
			return fmt.Errorf("task %d would have %d samples: %w", t, c, ErrNotPowerOfTwo)
		}
	}
	for i, t := range tasks {
		gp.y[t] = append(gp.y[t], y[i]...)
	}
	for t, c := range counts {
		gp.n[t] = c
		gp.m[t] = utils.Log2(c)
		gp.seqs[t].Extend(c)
	}
	return nil
}

// Kernel returns the kernel matrix between the rows of x and z, without
// task covariance or noise.
func (gp *FastGP) Kernel(x, z mat.Matrix) (*mat.Dense, error) {
	return kern.Matrix(gp.kernel, gp.Scale(), gp.Lengthscales(), x, z)
}

func (gp *FastGP) Scale() float64 {
	return gp.hp.Get(param.Scale).Value()
}

func (gp *FastGP) Lengthscales() []float64 {
	return gp.hp.Get(param.Lengthscales).Values()
}

func (gp *FastGP) Noise() float64 {
	return gp.hp.Get(param.Noise).Value()
}

// FactorTaskKernel returns the num_tasks x rank task factor, or an empty
// matrix for rank zero.
func (gp *FastGP) FactorTaskKernel() *mat.Dense {
	if gp.hp.Rank == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(gp.numTasks, gp.hp.Rank, gp.hp.Get(param.FactorTaskKernel).Values())
}

func (gp *FastGP) NoiseTaskKernel() []float64 {
	return gp.hp.Get(param.NoiseTaskKernel).Values()
}

// TaskCovariance returns F F^T + diag(v).
func (gp *FastGP) TaskCovariance() *mat.SymDense {
	out := mat.NewSymDense(gp.numTasks, nil)
	out.CopySym(gp.taskCovariance())
	return out
}

func (gp *FastGP) SetScale(v float64) error {
	return gp.set(param.Scale, []float64{v})
}

func (gp *FastGP) SetLengthscales(ls ...float64) error {
	vals, err := broadcast(ls, gp.d)
	if err != nil {
		return fmt.Errorf("lengthscales: %w", err)
	}
	return gp.set(param.Lengthscales, vals)
}

func (gp *FastGP) SetNoise(v float64) error {
	return gp.set(param.Noise, []float64{v})
}

func (gp *FastGP) SetFactorTaskKernel(f *mat.Dense) error {
	r, c := 0, 0
	if f != nil && !f.IsEmpty() {
		r, c = f.Dims()
	}
	if (c > 0 && r != gp.numTasks) || c != gp.hp.Rank {
		return fmt.Errorf("factor task kernel %dx%d: %w", r, c, ErrInvalidShape)
	}
	if c == 0 {
		return nil
	}
	return gp.set(param.FactorTaskKernel, denseValues(f))
}

func (gp *FastGP) SetNoiseTaskKernel(v ...float64) error {
	vals, err := broadcast(v, gp.numTasks)
	if err != nil {
		return fmt.Errorf("noise task kernel: %w", err)
	}
	return gp.set(param.NoiseTaskKernel, vals)
}

func (gp *FastGP) set(name param.Name, vals []float64) error {
	if err := gp.hp.Get(name).Set(vals); err != nil {
		return fmt.Errorf("%s: %w", name, wrapParamErr(err))
	}
	return nil
}
