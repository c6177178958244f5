package kern

import (
	"math"
)

var _ Kernel = (*ShiftInvariant)(nil)

// ShiftInvariant is the Korobov kernel for lattices. Its parts are scaled
// Bernoulli polynomials of the wrapped difference,
//     p(x, z) = (-1)^(a+1) (2 pi)^(2a) / (2a)! * B_2a((x - z) mod 1).
type ShiftInvariant struct {
	alpha []int
	c     []float64
}

func NewShiftInvariant(d, alpha int) (*ShiftInvariant, error) {
	if alpha < 1 || alpha > 4 {
		return nil, ErrAlpha
	}
	k := &ShiftInvariant{
		alpha: make([]int, d),
		c:     make([]float64, d),
	}
	for j := range k.alpha {
		k.alpha[j] = alpha
		k.c[j] = bernoulliConst(alpha)
	}
	return k, nil
}

func bernoulliConst(alpha int) float64 {
	sign := -1.0
	if alpha%2 == 1 {
		sign = 1.0
	}
	fact := 1.0
	for i := 2; i <= 2*alpha; i++ {
		fact *= float64(i)
	}
	return sign * math.Pow(2*math.Pi, float64(2*alpha)) / fact
}

func (k *ShiftInvariant) Dim() int {
	return len(k.alpha)
}

// Alpha returns the smoothness of each dimension.
func (k *ShiftInvariant) Alpha() []int {
	return k.alpha
}

func (k *ShiftInvariant) Parts(dst, x, z []float64) {
	for j, a := range k.alpha {
		delta := x[j] - z[j]
		delta -= math.Floor(delta)
		dst[j] = k.c[j] * bernoulli(2*a, delta)
	}
}

func bernoulli(order int, x float64) float64 {
	x2 := x * x
	switch order {
	case 2:
		return x2 - x + 1.0/6
	case 4:
		return x2*x2 - 2*x2*x + x2 - 1.0/30
	case 6:
		x4 := x2 * x2
		return x4*x2 - 3*x4*x + 2.5*x4 - 0.5*x2 + 1.0/42
	case 8:
		x4 := x2 * x2
		return x4*x4 - 4*x4*x2*x + 14.0/3*x4*x2 - 7.0/3*x4 + 2.0/3*x2 - 1.0/30
	}
	panic(ErrAlpha)
}
