package fastgp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func grid1(n int) *mat.Dense {
	x := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, (float64(i)+0.5)/float64(n))
	}
	return x
}

func TestPostMeanInterpolates(t *testing.T) {
	for name, family := range families() {
		gp, err := New(family, 2, WithSeed(1))
		require.NoError(t, err)
		addData(t, gp, smooth, []int{16})
		x, err := gp.X(0)
		require.NoError(t, err)
		y, err := gp.Y(0)
		require.NoError(t, err)
		mean, err := gp.PostMean(x, 0)
		require.NoError(t, err)
		assert.InDeltaSlice(t, y, mean, 1e-5, name)
		v, err := gp.PostVar(x, 0, nil)
		require.NoError(t, err)
		for i := range v {
			assert.GreaterOrEqual(t, v[i], 0.0)
			assert.Less(t, v[i], 1e-5, name)
		}
	}
}

func TestPostMeanWithoutData(t *testing.T) {
	gp, err := NewLattice(1)
	require.NoError(t, err)
	mean, err := gp.PostMean(grid1(4), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, mean)
	v, err := gp.PostVar(grid1(4), 0, nil)
	require.NoError(t, err)
	k, err := gp.Kernel(grid1(1), grid1(1))
	require.NoError(t, err)
	assert.InDelta(t, k.At(0, 0), v[0], 1e-12)
}

func TestPostCovFutureProjection(t *testing.T) {
	gp, err := NewDigitalNet(1, WithSeed(2), WithNoise(1e-6))
	require.NoError(t, err)
	addData(t, gp, ackley, []int{4})
	x := grid1(5)
	z := grid1(3)
	future, err := gp.PostCov(x, z, 0, 0, []int{8})
	require.NoError(t, err)
	futureVar, err := gp.PostVar(x, 0, []int{8})
	require.NoError(t, err)
	nowVar, err := gp.PostVar(x, 0, nil)
	require.NoError(t, err)
	for i := range nowVar {
		assert.LessOrEqual(t, futureVar[i], nowVar[i]+1e-12)
	}
	assert.Equal(t, []int{4}, gp.N())

	addData(t, gp, ackley, []int{8})
	now, err := gp.PostCov(x, z, 0, 0, nil)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(future, now, 1e-10))
}

func TestPostCovSymmetricAndClamped(t *testing.T) {
	gp, err := NewLattice(2, WithNumTasks(2), WithSeed(4))
	require.NoError(t, err)
	addData(t, gp, smooth, []int{8, 4})
	x := mat.NewDense(3, 2, []float64{0.1, 0.2, 0.5, 0.5, 0.9, 0.3})
	c, err := gp.PostCov(x, x, 1, 1, nil)
	require.NoError(t, err)
	v, err := gp.PostVar(x, 1, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, c.At(i, i), 0.0)
		assert.InDelta(t, v[i], c.At(i, i), 1e-10)
		for j := 0; j < 3; j++ {
			assert.InDelta(t, c.At(i, j), c.At(j, i), 1e-10)
		}
	}
	c01, err := gp.PostCov(x, x, 0, 1, nil)
	require.NoError(t, err)
	c10, err := gp.PostCov(x, x, 1, 0, nil)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(c01, c10.T(), 1e-9))
}

func TestPostVarShrinksWithData(t *testing.T) {
	gp, err := NewLattice(1, WithSeed(3))
	require.NoError(t, err)
	x := grid1(7)
	prev := []float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
	for _, n := range []int{2, 4, 8, 16} {
		addData(t, gp, ackley, []int{n})
		v, err := gp.PostVar(x, 0, nil)
		require.NoError(t, err)
		for i := range v {
			assert.LessOrEqual(t, v[i], prev[i]+1e-12, "n=%d", n)
		}
		prev = v
	}
}

func TestEmptyTaskFollowsCoupling(t *testing.T) {
	gp, err := NewLattice(1, WithNumTasks(2), WithSeed(9))
	require.NoError(t, err)
	xs, err := gp.GetXNext([]int{8}, []int{0})
	require.NoError(t, err)
	y := make([]float64, 8)
	for i := range y {
		y[i] = ackley(mat.Row(nil, i, xs[0]))
	}
	require.NoError(t, gp.AddYNext([][]float64{y}, []int{0}))
	assert.Equal(t, []int{8, 0}, gp.N())

	x := grid1(4)
	m0, err := gp.PostMean(x, 0)
	require.NoError(t, err)
	m1, err := gp.PostMean(x, 1)
	require.NoError(t, err)
	tc := gp.TaskCovariance()
	ratio := tc.At(1, 0) / tc.At(0, 0)
	for i := range m0 {
		assert.InDelta(t, ratio*m0[i], m1[i], 1e-9)
	}
	v1, err := gp.PostVar(x, 1, nil)
	require.NoError(t, err)
	k, err := gp.Kernel(x, x)
	require.NoError(t, err)
	for i := range v1 {
		assert.Less(t, v1[i], tc.At(1, 1)*k.At(i, i))
		assert.Greater(t, v1[i], 0.0)
	}
}

func TestPostCI(t *testing.T) {
	gp, err := NewDigitalNet(1, WithSeed(8))
	require.NoError(t, err)
	addData(t, gp, ackley, []int{8})
	x := grid1(4)
	ci, err := gp.PostCI(x, 0, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 1.959964, ci.Quantile, 1e-6)
	for i := range ci.Mean {
		assert.LessOrEqual(t, ci.Low[i], ci.Mean[i])
		assert.GreaterOrEqual(t, ci.High[i], ci.Mean[i])
		assert.InDelta(t, ci.Quantile*math.Sqrt(ci.Var[i]), ci.High[i]-ci.Mean[i], 1e-12)
	}
	_, err = gp.PostCI(x, 0, 1)
	assert.ErrorIs(t, err, ErrConfidence)
	_, err = gp.PostCI(x, 0, 0)
	assert.ErrorIs(t, err, ErrConfidence)
	_, err = gp.PostMean(mat.NewDense(2, 3, nil), 0)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = gp.PostVar(x, 2, nil)
	assert.ErrorIs(t, err, ErrTaskIndex)
}

func TestCubatureMeanMatchesMonteCarlo(t *testing.T) {
	for name, family := range families() {
		gp, err := New(family, 1, WithSeed(12), WithNoise(1e-8))
		require.NoError(t, err)
		addData(t, gp, smooth, []int{16})
		got, err := gp.PostCubatureMean(0)
		require.NoError(t, err)
		mean, err := gp.PostMean(grid1(4096), 0)
		require.NoError(t, err)
		assert.InDelta(t, stat.Mean(mean, nil), got, 1e-3, name)
		// The integral of smooth over [0, 1] is 4/3.
		assert.InDelta(t, 4.0/3, got, 5e-2, name)
	}
}

func TestCubatureVarShrinks(t *testing.T) {
	gp, err := NewLattice(1, WithSeed(6))
	require.NoError(t, err)
	addData(t, gp, ackley, []int{4})
	v4, err := gp.PostCubatureVar(0, nil)
	require.NoError(t, err)
	v8, err := gp.PostCubatureVar(0, []int{8})
	require.NoError(t, err)
	v16, err := gp.PostCubatureVar(0, []int{16})
	require.NoError(t, err)
	assert.Greater(t, v4, v8)
	assert.GreaterOrEqual(t, v8, v16)
	assert.GreaterOrEqual(t, v16, 0.0)
}

func TestCubatureWithoutData(t *testing.T) {
	gp, err := NewDigitalNet(2)
	require.NoError(t, err)
	v, err := gp.PostCubatureVar(0, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-12)
	require.NoError(t, gp.SetScale(3))
	v, err = gp.PostCubatureVar(0, nil)
	require.NoError(t, err)
	assert.InDelta(t, 3, v, 1e-12)
	m, err := gp.PostCubatureMean(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	ci, err := gp.PostCubatureCI(0, 0.99)
	require.NoError(t, err)
	assert.InDelta(t, ci.Quantile*math.Sqrt(3), ci.High, 1e-9)
	_, err = gp.PostCubatureCov(0, 1, nil)
	assert.ErrorIs(t, err, ErrTaskIndex)
}
