// Package param stores kernel hyperparameters in an unconstrained raw form.
package param

import (
	"errors"
	"math"
)

var (
	ErrNonPositive = errors.New("parameter must be positive")
	ErrShape       = errors.New("parameter has the wrong number of values")
	ErrNotFinite   = errors.New("parameter is not finite")
)

// Param is a vector of values stored as raw values r with v = Tf(r).
type Param struct {
	raw      []float64
	tf       Transform
	positive bool
	Optimize bool
}

func NewParam(vals []float64, tf Transform, positive, optimize bool) (*Param, error) {
	p := &Param{
		raw:      make([]float64, len(vals)),
		tf:       tf,
		positive: positive,
		Optimize: optimize,
	}
	if err := p.Set(vals); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Param) Len() int {
	return len(p.raw)
}

// Values returns the constrained values.
func (p *Param) Values() []float64 {
	out := make([]float64, len(p.raw))
	for i, r := range p.raw {
		out[i] = p.tf.ToConstrained(r)
	}
	return out
}

// Value returns the first constrained value.
func (p *Param) Value() float64 {
	return p.tf.ToConstrained(p.raw[0])
}

// Set replaces the constrained values.
func (p *Param) Set(vals []float64) error {
	if len(vals) != len(p.raw) {
		return ErrShape
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
		if p.positive && v <= 0 {
			return ErrNonPositive
		}
	}
	for i, v := range vals {
		p.raw[i] = p.tf.ToUnconstrained(v)
	}
	return nil
}

// Raw returns the unconstrained values. The slice aliases p.
func (p *Param) Raw() []float64 {
	return p.raw
}

// SetTransform changes the parameterization, keeping the values.
func (p *Param) SetTransform(tf Transform) {
	vals := p.Values()
	p.tf = tf
	for i, v := range vals {
		p.raw[i] = tf.ToUnconstrained(v)
	}
}
