package kern

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrAlpha     = errors.New("unsupported smoothness")
	ErrDimension = errors.New("dimension mismatch")
)

// Kernel is a product kernel on [0,1)^d,
//     k(x, z) = scale * prod_j (1 + l_j * p_j(x_j, z_j)),
// described by its one dimensional parts p_j. Every part integrates to zero
// over [0,1) in either argument, so the double integral of k is scale.
type Kernel interface {
	Dim() int

	// Parts stores p_j(x_j, z_j) in dst[j].
	Parts(dst, x, z []float64)
}

// BinaryKernel evaluates its parts directly on the integer representation
// of a digital net.
type BinaryKernel interface {
	Kernel
	PartsBinary(dst []float64, xb, zb []uint64)
}

// FromParts assembles the kernel value from its parts.
func FromParts(scale float64, lengthscales, parts []float64) float64 {
	k := scale
	for j, p := range parts {
		k *= 1 + lengthscales[j]*p
	}
	return k
}

// Eval returns k(x, z).
func Eval(k Kernel, scale float64, lengthscales, x, z []float64) float64 {
	parts := make([]float64, k.Dim())
	k.Parts(parts, x, z)
	return FromParts(scale, lengthscales, parts)
}

// Matrix returns the kernel matrix between the rows of x and z.
func Matrix(k Kernel, scale float64, lengthscales []float64, x, z mat.Matrix) (*mat.Dense, error) {
	nx, dx := x.Dims()
	nz, dz := z.Dims()
	if nx == 0 || nz == 0 {
		return &mat.Dense{}, nil
	}
	d := k.Dim()
	if dx != d || dz != d || len(lengthscales) != d {
		return nil, ErrDimension
	}
	out := mat.NewDense(nx, nz, nil)
	parts := make([]float64, d)
	xi := make([]float64, d)
	zj := make([]float64, d)
	for i := 0; i < nx; i++ {
		mat.Row(xi, i, x)
		for j := 0; j < nz; j++ {
			mat.Row(zj, j, z)
			k.Parts(parts, xi, zj)
			out.Set(i, j, FromParts(scale, lengthscales, parts))
		}
	}
	return out, nil
}
