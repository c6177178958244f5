package fitters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Gradient of sum_i a_i (x_i - c_i)^2.
func quadGrad(x []float64) []float64 {
	a := []float64{1, 10}
	c := []float64{3, -2}
	g := make([]float64, len(x))
	for i := range x {
		g[i] = 2 * a[i] * (x[i] - c[i])
	}
	return g
}

func TestOptimizersConverge(t *testing.T) {
	for name, opt := range map[string]Optimizer{
		"rprop": NewRprop(0.1),
		"adam":  NewAdam(0.01),
	} {
		x := []float64{0, 0}
		for i := 0; i < 5000; i++ {
			opt.Step(x, quadGrad(x))
		}
		assert.InDelta(t, 3, x[0], 5e-2, name)
		assert.InDelta(t, -2, x[1], 5e-2, name)
	}
}

func TestRpropStepAdaptation(t *testing.T) {
	o := NewRprop(0.1)
	x := []float64{0}
	o.Step(x, []float64{1})
	assert.InDelta(t, -0.1, x[0], 1e-12)
	o.Step(x, []float64{1})
	assert.InDelta(t, -0.22, x[0], 1e-12)
	// Sign flip halves the step and skips the move.
	o.Step(x, []float64{-1})
	assert.InDelta(t, -0.22, x[0], 1e-12)
	o.Step(x, []float64{-1})
	assert.InDelta(t, -0.16, x[0], 1e-12)
	o.Reset()
	o.Step(x, []float64{-1})
	assert.InDelta(t, -0.06, x[0], 1e-12)
}

func TestSizeMismatch(t *testing.T) {
	assert.PanicsWithValue(t, ErrSize, func() { NewAdam(0.1).Step([]float64{1}, nil) })
}
