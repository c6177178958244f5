package fastgp

import (
	"gonum.org/v1/gonum/floats"
)

// frozen memoizes a value together with the hyperparameter snapshot it was
// computed from.
type frozen[T any] struct {
	value T
	snap  []float64
	ok    bool
}

func (f *frozen[T]) fresh(snap []float64, force bool) bool {
	return f.ok && !force && floats.Equal(f.snap, snap)
}

func (f *frozen[T]) set(v T, snap []float64) {
	f.value = v
	f.snap = append(f.snap[:0], snap...)
	f.ok = true
}

func (f *frozen[T]) reset() {
	var zero T
	f.value = zero
	f.ok = false
}
