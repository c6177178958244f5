package param

// Name identifies one of the model hyperparameters.
type Name int

const (
	Scale Name = iota
	Lengthscales
	Noise
	FactorTaskKernel
	NoiseTaskKernel
)

func (n Name) String() string {
	switch n {
	case Scale:
		return "scale"
	case Lengthscales:
		return "lengthscales"
	case Noise:
		return "noise"
	case FactorTaskKernel:
		return "factor_task_kernel"
	case NoiseTaskKernel:
		return "noise_task_kernel"
	}
	return "unknown"
}

// Names lists every hyperparameter in packing order.
var Names = []Name{Scale, Lengthscales, Noise, FactorTaskKernel, NoiseTaskKernel}

// Hyperparameters of a multi-task structured kernel. The task factor is
// stored row-major with Rank columns.
type Hyperparameters struct {
	params   [5]*Param
	NumTasks int
	Rank     int
}

func NewHyperparameters(scale, lengthscales, noise, factor, noiseTask *Param, rank int) *Hyperparameters {
	return &Hyperparameters{
		params:   [5]*Param{scale, lengthscales, noise, factor, noiseTask},
		NumTasks: noiseTask.Len(),
		Rank:     rank,
	}
}

func (h *Hyperparameters) Get(n Name) *Param {
	return h.params[n]
}

// Size returns the number of raw values being optimised.
func (h *Hyperparameters) Size() int {
	size := 0
	for _, p := range h.params {
		if p.Optimize {
			size += p.Len()
		}
	}
	return size
}

// Raw packs the raw values of every optimised parameter.
func (h *Hyperparameters) Raw() []float64 {
	out := make([]float64, 0, h.Size())
	for _, p := range h.params {
		if p.Optimize {
			out = append(out, p.raw...)
		}
	}
	return out
}

// SetRaw unpacks x as produced by Raw.
func (h *Hyperparameters) SetRaw(x []float64) {
	if len(x) != h.Size() {
		panic(ErrShape)
	}
	off := 0
	for _, p := range h.params {
		if p.Optimize {
			off += copy(p.raw, x[off:off+p.Len()])
		}
	}
}

// KernelSnapshot identifies the state of scale, lengthscales and noise.
func (h *Hyperparameters) KernelSnapshot() []float64 {
	return h.snapshot(Scale, Lengthscales, Noise)
}

// TaskSnapshot identifies the state of the task covariance.
func (h *Hyperparameters) TaskSnapshot() []float64 {
	return h.snapshot(FactorTaskKernel, NoiseTaskKernel)
}

// Snapshot identifies the state of every hyperparameter.
func (h *Hyperparameters) Snapshot() []float64 {
	return h.snapshot(Names...)
}

func (h *Hyperparameters) snapshot(names ...Name) []float64 {
	out := make([]float64, 0, 16)
	for _, n := range names {
		out = append(out, h.params[n].raw...)
	}
	return out
}
