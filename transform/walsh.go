package transform

import (
	"math"
)

var _ Transform = Walsh{}

// Walsh is the orthonormal fast Walsh-Hadamard transform in natural
// (Hadamard) order. It is its own inverse.
type Walsh struct{}

func (Walsh) Forward(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	copy(out, v)
	fwht(out)
	return out
}

func (Walsh) Inverse(v []complex128) []complex128 {
	return Walsh{}.Forward(v)
}

func (Walsh) Omega(m int) []complex128 {
	out := make([]complex128, 1<<m)
	for i := range out {
		out[i] = 1
	}
	return out
}

// In-place butterflies, scaled by 1/sqrt(n) at the end.
func fwht(v []complex128) {
	n := len(v)
	checkLen(n)
	for h := 1; h < n; h <<= 1 {
		for i := 0; i < n; i += h << 1 {
			for j := i; j < i+h; j++ {
				a, b := v[j], v[j+h]
				v[j], v[j+h] = a+b, a-b
			}
		}
	}
	s := complex(1/math.Sqrt(float64(n)), 0)
	for i := range v {
		v[i] *= s
	}
}
