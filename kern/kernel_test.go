package kern

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestShiftInvariantIntegratesToZero(t *testing.T) {
	for alpha := 1; alpha <= 4; alpha++ {
		k, err := NewShiftInvariant(1, alpha)
		require.NoError(t, err)
		const n = 20000
		sum := 0.0
		dst := make([]float64, 1)
		for i := 0; i < n; i++ {
			k.Parts(dst, []float64{(float64(i) + 0.5) / n}, []float64{0.3})
			sum += dst[0]
		}
		assert.InDelta(t, 0, sum/n, 1e-5, "alpha=%d", alpha)
	}
}

func TestShiftInvariantAtZero(t *testing.T) {
	// p(x, x) = sum_{h != 0} |h|^(-2 alpha) = 2 zeta(2 alpha).
	want := map[int]float64{
		1: math.Pi * math.Pi / 3,
		2: math.Pow(math.Pi, 4) / 45,
	}
	for alpha, w := range want {
		k, err := NewShiftInvariant(1, alpha)
		require.NoError(t, err)
		dst := make([]float64, 1)
		k.Parts(dst, []float64{0.25}, []float64{0.25})
		assert.InDelta(t, w, dst[0], 1e-12)
	}
}

func TestDigitalShiftInvariantIntegratesToZero(t *testing.T) {
	for alpha := 2; alpha <= 4; alpha++ {
		k, err := NewDigitalShiftInvariant(1, alpha)
		require.NoError(t, err)
		// The part is constant on [2^(-i-1), 2^-i).
		dst := make([]float64, 1)
		sum := 0.0
		for i := 0; i < 32; i++ {
			w := math.Ldexp(1, -i-1)
			k.Parts(dst, []float64{1.5 * w}, []float64{0})
			sum += w * dst[0]
		}
		sum += math.Ldexp(1, -32)
		assert.InDelta(t, 0, sum, 1e-9, "alpha=%d", alpha)
	}
}

func TestDigitalBinaryMatchesFloat(t *testing.T) {
	k, err := NewDigitalShiftInvariant(2, 3)
	require.NoError(t, err)
	x := []float64{0.375, 0.8125}
	z := []float64{0.5, 0.0625}
	a := make([]float64, 2)
	b := make([]float64, 2)
	k.Parts(a, x, z)
	k.PartsBinary(b, []uint64{toBinary(x[0]), toBinary(x[1])}, []uint64{toBinary(z[0]), toBinary(z[1])})
	assert.Equal(t, a, b)
	k.Parts(a, x, x)
	assert.Equal(t, []float64{1, 1}, a)
}

func TestShiftInvariance(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	k, err := NewShiftInvariant(3, 2)
	require.NoError(t, err)
	ls := []float64{0.5, 1, 2}
	for i := 0; i < 10; i++ {
		x := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		z := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		s := rng.Float64()
		xs := []float64{x[0] + s, x[1] + s, x[2] + s}
		zs := []float64{z[0] + s, z[1] + s, z[2] + s}
		assert.InDelta(t, Eval(k, 1.3, ls, x, z), Eval(k, 1.3, ls, xs, zs), 1e-9)
		assert.InDelta(t, Eval(k, 1.3, ls, x, z), Eval(k, 1.3, ls, z, x), 1e-9)
	}
}

func TestMatrixPositiveDefinite(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	x := mat.NewDense(12, 2, nil)
	for i := 0; i < 12; i++ {
		x.Set(i, 0, rng.Float64())
		x.Set(i, 1, rng.Float64())
	}
	lat, err := NewShiftInvariant(2, 2)
	require.NoError(t, err)
	dig, err := NewDigitalShiftInvariant(2, 2)
	require.NoError(t, err)
	for _, k := range []Kernel{lat, dig} {
		km, err := Matrix(k, 1, []float64{1, 1}, x, x)
		require.NoError(t, err)
		sym := mat.NewSymDense(12, nil)
		for i := 0; i < 12; i++ {
			for j := i; j < 12; j++ {
				sym.SetSym(i, j, km.At(i, j))
			}
		}
		var chol mat.Cholesky
		assert.True(t, chol.Factorize(sym))
	}
}

func TestBadArguments(t *testing.T) {
	_, err := NewShiftInvariant(1, 5)
	assert.ErrorIs(t, err, ErrAlpha)
	_, err = NewDigitalShiftInvariant(1, 1)
	assert.ErrorIs(t, err, ErrAlpha)
	k, _ := NewShiftInvariant(2, 1)
	_, err = Matrix(k, 1, []float64{1, 1}, mat.NewDense(1, 3, nil), mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, ErrDimension)
}
