// Package seq generates extensible low-discrepancy point sets whose first
// 2^m points always form a structured design.
package seq

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrRange     = errors.New("sequence index out of range")
	ErrDimension = errors.New("unsupported dimension")
)

// Generator produces points lo, ..., hi-1 of a deterministic sequence in
// [0,1)^d. Points are returned row-major in x. Generators with an exact
// integer representation also return it in xb, otherwise xb is nil.
// Calling Generate(0, hi) must agree with Generate(0, lo) followed by
// Generate(lo, hi).
type Generator interface {
	Dim() int
	Generate(lo, hi int) (x []float64, xb []uint64)
}

// Sequence is an append-only cache over a Generator.
type Sequence struct {
	gen Generator
	d   int
	n   int
	x   []float64
	xb  []uint64
}

func NewSequence(gen Generator) *Sequence {
	d := gen.Dim()
	return &Sequence{
		gen: gen,
		d:   d,
		x:   make([]float64, 0, 10*d),
	}
}

func (s *Sequence) Dim() int {
	return s.d
}

// Len returns the number of materialized points.
func (s *Sequence) Len() int {
	return s.n
}

// Binary reports whether points carry an integer representation.
func (s *Sequence) Binary() bool {
	return s.xb != nil
}

// Extend materializes the sequence up to at least n points.
func (s *Sequence) Extend(n int) {
	if n < 0 {
		panic(ErrRange)
	}
	if n <= s.n {
		return
	}
	x, xb := s.gen.Generate(s.n, n)
	s.x = append(s.x, x...)
	if xb != nil {
		if s.xb == nil {
			s.xb = make([]uint64, 0, cap(s.x))
		}
		s.xb = append(s.xb, xb...)
	}
	s.n = n
}

// Slice returns points lo, ..., hi-1 row-major, extending the sequence if
// needed. The returned slices alias the cache and must not be modified.
func (s *Sequence) Slice(lo, hi int) (x []float64, xb []uint64) {
	if lo < 0 || hi < lo {
		panic(ErrRange)
	}
	s.Extend(hi)
	x = s.x[lo*s.d : hi*s.d]
	if s.xb != nil {
		xb = s.xb[lo*s.d : hi*s.d]
	}
	return x, xb
}

// Point returns point i.
func (s *Sequence) Point(i int) []float64 {
	x, _ := s.Slice(i, i+1)
	return x
}

// Matrix copies points lo, ..., hi-1 into the rows of a new matrix.
func (s *Sequence) Matrix(lo, hi int) *mat.Dense {
	x, _ := s.Slice(lo, hi)
	if hi == lo {
		return &mat.Dense{}
	}
	data := make([]float64, len(x))
	copy(data, x)
	return mat.NewDense(hi-lo, s.d, data)
}
