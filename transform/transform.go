// Package transform holds the orthonormal fast transforms that diagonalize
// structured kernel matrices: the Walsh-Hadamard transform for digital nets
// and the bit-reversed Fourier transform for lattices.
package transform

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrLength = errors.New("transform length must be a power of two")

// Transform is a pair of mutually inverse orthonormal transforms of length
// 2^m together with the twiddle vector of the doubling recursion.
type Transform interface {
	// Forward returns the transform of v. v is not modified.
	Forward(v []complex128) []complex128

	// Inverse returns the inverse transform of v. v is not modified.
	Inverse(v []complex128) []complex128

	// Omega returns the 2^m weights combining two half-length transforms:
	//     full = concat(lo + omega*hi, lo - omega*hi) / sqrt(2).
	Omega(m int) []complex128
}

// Forward applies t after removing the mean of v, which keeps the zero bin
// free of cancellation error.
func Forward(t Transform, v []complex128) []complex128 {
	return centered(t.Forward, v)
}

// Inverse is the centered counterpart of Forward.
func Inverse(t Transform, v []complex128) []complex128 {
	return centered(t.Inverse, v)
}

func centered(f func([]complex128) []complex128, v []complex128) []complex128 {
	n := len(v)
	if n == 0 {
		return []complex128{}
	}
	var mean complex128
	for _, x := range v {
		mean += x
	}
	mean /= complex(float64(n), 0)
	tmp := make([]complex128, n)
	for i, x := range v {
		tmp[i] = x - mean
	}
	out := f(tmp)
	out[0] += mean * complex(math.Sqrt(float64(n)), 0)
	return out
}

// Double combines the transform lo of the first 2^m entries of a vector with
// the transform hi of the next 2^m entries into the transform of all 2^(m+1)
// entries.
func Double(t Transform, lo, hi []complex128) []complex128 {
	n := len(lo)
	if len(hi) != n {
		panic(ErrLength)
	}
	omega := t.Omega(checkLen(n))
	out := make([]complex128, 2*n)
	for k := 0; k < n; k++ {
		w := omega[k] * hi[k]
		out[k] = (lo[k] + w) / math.Sqrt2
		out[n+k] = (lo[k] - w) / math.Sqrt2
	}
	return out
}

// Real returns the real parts of v.
func Real(v []complex128) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = real(x)
	}
	return out
}

// Complex lifts v to complex values.
func Complex(v []float64) []complex128 {
	out := make([]complex128, len(v))
	for i, x := range v {
		out[i] = complex(x, 0)
	}
	return out
}

// MaxAbsDiff returns max_i |a[i] - b[i]|.
func MaxAbsDiff(a, b []complex128) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	d := 0.0
	for i := range a {
		d = math.Max(d, cmplx.Abs(a[i]-b[i]))
	}
	return d
}

func checkLen(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		panic(ErrLength)
	}
	m := 0
	for 1<<m < n {
		m++
	}
	return m
}
