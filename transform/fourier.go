package transform

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/lucasmaystre/gofastgp/utils"
)

var _ Transform = (*BitReversedFourier)(nil)

// BitReversedFourier is the orthonormal discrete Fourier transform taking
// its input in bit-reversed order and returning frequencies in natural
// order. This is the order in which an embedded lattice in van der Corput
// order lists its points.
//
// Plans are pooled per length, so a single value is safe for concurrent use.
type BitReversedFourier struct {
	mu    sync.Mutex
	plans map[int]*sync.Pool
}

func NewBitReversedFourier() *BitReversedFourier {
	return &BitReversedFourier{plans: make(map[int]*sync.Pool)}
}

func (t *BitReversedFourier) pool(n int) *sync.Pool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.plans == nil {
		t.plans = make(map[int]*sync.Pool)
	}
	p, ok := t.plans[n]
	if !ok {
		p = &sync.Pool{New: func() any { return fourier.NewCmplxFFT(n) }}
		t.plans[n] = p
	}
	return p
}

func (t *BitReversedFourier) Forward(v []complex128) []complex128 {
	n := len(v)
	m := checkLen(n)
	if n == 1 {
		return []complex128{v[0]}
	}
	perm := make([]complex128, n)
	for i, x := range v {
		perm[utils.BitReverse(uint64(i), m)] = x
	}
	p := t.pool(n)
	fft := p.Get().(*fourier.CmplxFFT)
	out := fft.Coefficients(nil, perm)
	p.Put(fft)
	s := complex(1/math.Sqrt(float64(n)), 0)
	for i := range out {
		out[i] *= s
	}
	return out
}

func (t *BitReversedFourier) Inverse(v []complex128) []complex128 {
	n := len(v)
	m := checkLen(n)
	if n == 1 {
		return []complex128{v[0]}
	}
	p := t.pool(n)
	fft := p.Get().(*fourier.CmplxFFT)
	seq := fft.Sequence(nil, v)
	p.Put(fft)
	s := complex(1/math.Sqrt(float64(n)), 0)
	out := make([]complex128, n)
	for k, x := range seq {
		out[utils.BitReverse(uint64(k), m)] = x * s
	}
	return out
}

// Omega returns exp(-i*pi*k/2^m) for k < 2^m.
func (t *BitReversedFourier) Omega(m int) []complex128 {
	n := 1 << m
	out := make([]complex128, n)
	for k := range out {
		out[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(n)))
	}
	return out
}
