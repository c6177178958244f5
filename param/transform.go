package param

import (
	"math"
)

// Transform maps a constrained parameter value to the unconstrained scale
// seen by optimisers, and back.
type Transform interface {
	ToUnconstrained(v float64) float64
	ToConstrained(r float64) float64
}

var (
	_ Transform = Log{}
	_ Transform = Identity{}
	_ Transform = Softplus{}
)

// Log keeps values positive: v = exp(r).
type Log struct{}

func (Log) ToUnconstrained(v float64) float64 { return math.Log(v) }
func (Log) ToConstrained(r float64) float64   { return math.Exp(r) }

type Identity struct{}

func (Identity) ToUnconstrained(v float64) float64 { return v }
func (Identity) ToConstrained(r float64) float64   { return r }

// Softplus keeps values positive with linear growth: v = log(1 + exp(r)).
type Softplus struct{}

func (Softplus) ToUnconstrained(v float64) float64 {
	// log(exp(v) - 1), stable for large v.
	return v + math.Log(-math.Expm1(-v))
}

func (Softplus) ToConstrained(r float64) float64 {
	if r > 30 {
		return r + math.Log1p(math.Exp(-r))
	}
	return math.Log1p(math.Exp(r))
}
