package seq

import (
	"math/rand/v2"
)

var _ Generator = (*DigitalNet)(nil)

// Precision, in bits, of the integer representation.
const Precision = 32

// MaxDigitalNetDim is the largest dimension supported by NewDigitalNet.
const MaxDigitalNetDim = 16

// Joe and Kuo direction numbers for dimensions 2, 3, ...: degree s of the
// primitive polynomial, its coefficients a, and initial values m.
var directionNumbers = []struct {
	s, a int
	m    []uint32
}{
	{1, 0, []uint32{1}},
	{2, 1, []uint32{1, 3}},
	{3, 1, []uint32{1, 3, 1}},
	{3, 2, []uint32{1, 1, 1}},
	{4, 1, []uint32{1, 1, 3, 3}},
	{4, 4, []uint32{1, 3, 5, 13}},
	{5, 2, []uint32{1, 1, 5, 5, 17}},
	{5, 4, []uint32{1, 1, 5, 5, 5}},
	{5, 7, []uint32{1, 1, 7, 11, 19}},
	{5, 11, []uint32{1, 1, 5, 1, 1}},
	{5, 13, []uint32{1, 1, 1, 3, 11}},
	{5, 14, []uint32{1, 3, 5, 5, 31}},
	{6, 1, []uint32{1, 3, 3, 9, 7, 49}},
	{6, 13, []uint32{1, 1, 1, 15, 21, 21}},
	{6, 16, []uint32{1, 3, 1, 13, 27, 49}},
}

// DigitalNet is a digitally shifted base 2 Sobol' net in natural order:
// point i is the XOR of the generating matrix columns selected by the bits
// of i, XORed with the shift. The integer form keeps Precision bits.
type DigitalNet struct {
	v     [][Precision]uint32
	shift []uint32
}

// NewDigitalNet returns a d-dimensional digital net. The shift is drawn from
// rng; a nil rng gives the unshifted net.
func NewDigitalNet(d int, rng *rand.Rand) (*DigitalNet, error) {
	if d < 1 || d > MaxDigitalNetDim {
		return nil, ErrDimension
	}
	v := make([][Precision]uint32, d)
	for k := 0; k < Precision; k++ {
		v[0][k] = 1 << (Precision - 1 - k)
	}
	for j := 1; j < d; j++ {
		dn := directionNumbers[j-1]
		s := dn.s
		for k := 0; k < s; k++ {
			v[j][k] = dn.m[k] << (Precision - 1 - k)
		}
		for k := s; k < Precision; k++ {
			// V_k = V_{k-s} ^ (V_{k-s} >> s) ^ sum_l a_l V_{k-l}
			w := v[j][k-s] ^ (v[j][k-s] >> s)
			for l := 1; l < s; l++ {
				if (dn.a>>(s-1-l))&1 == 1 {
					w ^= v[j][k-l]
				}
			}
			v[j][k] = w
		}
	}
	shift := make([]uint32, d)
	if rng != nil {
		for j := range shift {
			shift[j] = rng.Uint32()
		}
	}
	return &DigitalNet{v: v, shift: shift}, nil
}

func (g *DigitalNet) Dim() int {
	return len(g.v)
}

func (g *DigitalNet) Generate(lo, hi int) ([]float64, []uint64) {
	d := len(g.v)
	x := make([]float64, 0, (hi-lo)*d)
	xb := make([]uint64, 0, (hi-lo)*d)
	for i := lo; i < hi; i++ {
		for j := 0; j < d; j++ {
			var u uint32
			for k, b := 0, uint32(i); b != 0; k, b = k+1, b>>1 {
				if b&1 == 1 {
					u ^= g.v[j][k]
				}
			}
			u ^= g.shift[j]
			xb = append(xb, uint64(u))
			x = append(x, float64(u)/(1<<Precision))
		}
	}
	return x, xb
}
