// Package fitters holds first order optimisers for hyperparameter fitting.
package fitters

import (
	"errors"
)

var ErrSize = errors.New("gradient and parameter sizes differ")

// Optimizer updates parameters x in place from the gradient of an objective
// to be minimised. Implementations keep per-coordinate state between steps.
type Optimizer interface {
	Step(x, grad []float64)
	Reset()
}

func checkSize(x, grad []float64) {
	if len(x) != len(grad) {
		panic(ErrSize)
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
