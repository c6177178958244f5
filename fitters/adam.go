package fitters

import (
	"math"
)

var _ Optimizer = (*Adam)(nil)

type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
	m     []float64
	v     []float64
	t     int
}

func NewAdam(lr float64) *Adam {
	return &Adam{
		LR:    lr,
		Beta1: 0.9,
		Beta2: 0.999,
		Eps:   1e-8,
	}
}

func (o *Adam) Reset() {
	o.m, o.v, o.t = nil, nil, 0
}

func (o *Adam) Step(x, grad []float64) {
	checkSize(x, grad)
	if len(o.m) != len(x) {
		o.m = make([]float64, len(x))
		o.v = make([]float64, len(x))
		o.t = 0
	}
	o.t++
	c1 := 1 - math.Pow(o.Beta1, float64(o.t))
	c2 := 1 - math.Pow(o.Beta2, float64(o.t))
	for i, g := range grad {
		// m = b1 m + (1 - b1) g,  v = b2 v + (1 - b2) g^2
		o.m[i] = o.Beta1*o.m[i] + (1-o.Beta1)*g
		o.v[i] = o.Beta2*o.v[i] + (1-o.Beta2)*g*g
		x[i] -= o.LR * (o.m[i] / c1) / (math.Sqrt(o.v[i]/c2) + o.Eps)
	}
}
