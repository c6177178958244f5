package fitters

import (
	"math"
)

var _ Optimizer = (*Rprop)(nil)

// Rprop is resilient backpropagation: each coordinate moves by its own step
// size, grown when the gradient keeps its sign and shrunk when it flips.
type Rprop struct {
	LR       float64
	EtaMinus float64
	EtaPlus  float64
	StepMin  float64
	StepMax  float64
	prev     []float64
	steps    []float64
}

func NewRprop(lr float64) *Rprop {
	return &Rprop{
		LR:       lr,
		EtaMinus: 0.5,
		EtaPlus:  1.2,
		StepMin:  1e-6,
		StepMax:  50,
	}
}

func (o *Rprop) Reset() {
	o.prev = nil
	o.steps = nil
}

func (o *Rprop) Step(x, grad []float64) {
	checkSize(x, grad)
	if len(o.steps) != len(x) {
		o.prev = make([]float64, len(x))
		o.steps = make([]float64, len(x))
		for i := range o.steps {
			o.steps[i] = o.LR
		}
	}
	for i, g := range grad {
		switch s := g * o.prev[i]; {
		case s > 0:
			o.steps[i] = math.Min(o.steps[i]*o.EtaPlus, o.StepMax)
		case s < 0:
			o.steps[i] = math.Max(o.steps[i]*o.EtaMinus, o.StepMin)
			// Skip the update after a sign change.
			g = 0
		}
		x[i] -= sign(g) * o.steps[i]
		o.prev[i] = g
	}
}
