package seq

import (
	"math"
	"math/bits"
	"math/rand/v2"
)

var _ Generator = (*Lattice)(nil)

// Generating vector of an embedded rank-1 lattice, good up to 2^20 points.
var latticeVector = []uint32{
	1, 182667, 469891, 498753, 110745, 446247, 250185, 118627,
	245333, 283199, 408519, 391023, 246327, 126539, 399185, 461527,
}

// MaxLatticeDim is the largest dimension supported by NewLattice.
const MaxLatticeDim = 16

// Lattice is a randomly shifted rank-1 lattice in radical inverse order:
//     x_i = frac(phi(i) * z + shift)
// where phi(i) is the base 2 radical inverse of i.
type Lattice struct {
	z     []uint32
	shift []float64
}

// NewLattice returns a d-dimensional lattice. The shift is drawn from rng;
// a nil rng gives the unshifted lattice.
func NewLattice(d int, rng *rand.Rand) (*Lattice, error) {
	if d < 1 || d > MaxLatticeDim {
		return nil, ErrDimension
	}
	shift := make([]float64, d)
	if rng != nil {
		for j := range shift {
			shift[j] = rng.Float64()
		}
	}
	return &Lattice{z: latticeVector[:d], shift: shift}, nil
}

func (g *Lattice) Dim() int {
	return len(g.z)
}

func (g *Lattice) Generate(lo, hi int) ([]float64, []uint64) {
	d := len(g.z)
	x := make([]float64, 0, (hi-lo)*d)
	for i := lo; i < hi; i++ {
		phi := bits.Reverse32(uint32(i))
		for j, zj := range g.z {
			// phi(i)*z mod 1, exactly, as a 32 bit fraction.
			u := float64(phi*zj) / (1 << 32)
			v := u + g.shift[j]
			x = append(x, v-math.Floor(v))
		}
	}
	return x, nil
}
