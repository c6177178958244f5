package seq

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generators(t *testing.T, d int) map[string]Generator {
	lat, err := NewLattice(d, rand.New(rand.NewPCG(7, 0)))
	require.NoError(t, err)
	dn, err := NewDigitalNet(d, rand.New(rand.NewPCG(7, 0)))
	require.NoError(t, err)
	return map[string]Generator{"lattice": lat, "digital_net": dn}
}

func TestPrefixStable(t *testing.T) {
	for name, gen := range generators(t, 3) {
		all, allb := gen.Generate(0, 16)
		s := NewSequence(gen)
		s.Extend(4)
		s.Extend(8)
		x, xb := s.Slice(0, 16)
		assert.Equal(t, all, x, name)
		assert.Equal(t, allb, xb, name)
		assert.Equal(t, 16, s.Len(), name)
	}
}

func TestUnitCube(t *testing.T) {
	for name, gen := range generators(t, 5) {
		x, _ := gen.Generate(0, 64)
		for _, v := range x {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.Less(t, v, 1.0, name)
		}
	}
}

func TestLatticeIsGroup(t *testing.T) {
	g, err := NewLattice(2, nil)
	require.NoError(t, err)
	x, xb := g.Generate(0, 8)
	assert.Nil(t, xb)
	// The first 8 points are {j z / 8 mod 1}, so each coordinate is a
	// multiple of 1/8 and the first coordinate takes every value once.
	seen := map[float64]bool{}
	for i := 0; i < 8; i++ {
		v := x[2*i]
		assert.InDelta(t, 0, math.Mod(v*8, 1), 1e-12)
		seen[v] = true
	}
	assert.Len(t, seen, 8)
	assert.Equal(t, []float64{0, 0}, x[:2])
	assert.Equal(t, []float64{0.5, 0.5}, x[2:4])
}

func TestDigitalNetIsGroup(t *testing.T) {
	g, err := NewDigitalNet(4, nil)
	require.NoError(t, err)
	_, xb := g.Generate(0, 16)
	d := 4
	for i := 0; i < 16; i++ {
		for k := 0; k < 16; k++ {
			for j := 0; j < d; j++ {
				assert.Equal(t, xb[(i^k)*d+j], xb[i*d+j]^xb[k*d+j])
			}
		}
	}
}

func TestDigitalNetStratified(t *testing.T) {
	g, err := NewDigitalNet(3, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	x, _ := g.Generate(0, 8)
	// Each coordinate of the first 2^m points visits every interval of
	// width 2^-m once.
	for j := 0; j < 3; j++ {
		seen := map[int]bool{}
		for i := 0; i < 8; i++ {
			seen[int(x[i*3+j]*8)] = true
		}
		assert.Len(t, seen, 8)
	}
}

func TestDimensionLimits(t *testing.T) {
	_, err := NewLattice(0, nil)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = NewLattice(MaxLatticeDim+1, nil)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = NewDigitalNet(MaxDigitalNetDim+1, nil)
	assert.ErrorIs(t, err, ErrDimension)
}

func TestSliceAndMatrix(t *testing.T) {
	g, err := NewDigitalNet(2, nil)
	require.NoError(t, err)
	s := NewSequence(g)
	assert.False(t, s.Binary())
	m := s.Matrix(2, 4)
	assert.True(t, s.Binary())
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, s.Point(3), m.RawRowView(1))
	assert.True(t, s.Matrix(1, 1).IsEmpty())
	assert.Panics(t, func() { s.Slice(3, 2) })
	assert.Panics(t, func() { s.Extend(-1) })
}
