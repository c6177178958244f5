package fastgp

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/lucasmaystre/gofastgp/transform"
	"github.com/lucasmaystre/gofastgp/utils"
)

// blockInverse is the inverse of the transformed joint covariance. In the
// transform domain the covariance decouples into grid independent blocks,
// one per frequency f of the smallest task; block f has one row per
// frequency q*grid + f of every task, task after task.
type blockInverse struct {
	rows   int
	grid   int
	data   []complex128 // data[(f*rows + i)*rows + j]
	logdet float64
}

func (b *blockInverse) block(f int) cblas128.General {
	r := b.rows
	return cblas128.General{Rows: r, Cols: r, Stride: r, Data: b.data[f*r*r : (f+1)*r*r]}
}

func (b *blockInverse) at(f, i, j int) complex128 {
	return b.data[(f*b.rows+i)*b.rows+j]
}

// refine redistributes the blocks onto the finer grid g. Frequency
// F = q*g + f of the old grid becomes row offset q inside every group of
// r = grid/g rows of the new block f.
func (b *blockInverse) refine(g int) *blockInverse {
	if g == b.grid {
		return b
	}
	r := b.grid / g
	R := b.rows * r
	out := &blockInverse{
		rows:   R,
		grid:   g,
		data:   make([]complex128, g*R*R),
		logdet: b.logdet,
	}
	for F := 0; F < b.grid; F++ {
		q, f := F/g, F%g
		for i := 0; i < b.rows; i++ {
			for j := 0; j < b.rows; j++ {
				out.data[(f*R+i*r+q)*R+j*r+q] = b.at(F, i, j)
			}
		}
	}
	return out
}

// inverseCache factors the joint covariance at a fixed horizon n. Tasks with
// no samples are left out; the rest are processed by decreasing n.
type inverseCache struct {
	gp      *FastGP
	n       []int
	order   []int
	offsets []int
	rows    int
	grid    int
	state   frozen[*blockInverse]
}

func newInverseCache(gp *FastGP, n []int) *inverseCache {
	c := &inverseCache{gp: gp, n: n}
	for t, nt := range n {
		if nt > 0 {
			c.order = append(c.order, t)
		}
	}
	sort.SliceStable(c.order, func(a, b int) bool {
		return n[c.order[a]] > n[c.order[b]]
	})
	if len(c.order) == 0 {
		return c
	}
	c.grid = n[c.order[len(c.order)-1]]
	c.offsets = make([]int, len(c.order))
	for k, t := range c.order {
		c.offsets[k] = c.rows
		c.rows += n[t] / c.grid
	}
	return c
}

func horizonKey(n []int) string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// stale reports whether the horizon lies below the current sample counts.
func (c *inverseCache) stale(n []int) bool {
	for i, v := range c.n {
		if v < n[i] {
			return true
		}
	}
	return false
}

func (c *inverseCache) get() *blockInverse {
	snap := c.gp.hp.Snapshot()
	if c.state.fresh(snap, c.gp.forceRecompile) {
		return c.state.value
	}
	inv := c.build()
	if c.gp.debug {
		c.checkDense(inv)
	}
	c.state.set(inv, snap)
	return inv
}

type recovered struct{ v any }

func (r recovered) Error() string { return fmt.Sprint(r.v) }

// lambdas returns, for ordered tasks k <= l,
//
//	lams[k][l] = sqrt(n_l) * tc[o_k, o_l] * lam(o_k, o_l, n_k)
//
// computing the pairs concurrently.
func (c *inverseCache) lambdas() [][][]complex128 {
	gp := c.gp
	K := len(c.order)
	tc := gp.taskCovariance()
	// Materialize points and kernel parts up front, the pairs below only
	// read them.
	for k := 0; k < K; k++ {
		for l := k; l < K; l++ {
			gp.kparts[c.order[k]][c.order[l]].get(c.n[c.order[k]])
		}
	}
	lams := make([][][]complex128, K)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k := 0; k < K; k++ {
		lams[k] = make([][]complex128, K)
		for l := k; l < K; l++ {
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = recovered{r}
					}
				}()
				ok, ol := c.order[k], c.order[l]
				lam := gp.lams[ok][ol].get(utils.Log2(c.n[ok]))
				s := complex(math.Sqrt(float64(c.n[ol]))*tc.At(ok, ol), 0)
				out := make([]complex128, len(lam))
				for i, v := range lam {
					out[i] = s * v
				}
				lams[k][l] = out
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		panic(err.(recovered).v)
	}
	return lams
}

// build runs the block Schur complement recursion over the ordered tasks.
func (c *inverseCache) build() *blockInverse {
	K := len(c.order)
	if K == 0 {
		return &blockInverse{}
	}
	nord := make([]int, K)
	for k, t := range c.order {
		nord[k] = c.n[t]
	}
	lams := c.lambdas()
	// A = 1 / lams[0][0], logdet = sum log|lams[0][0]|
	A := &blockInverse{rows: 1, grid: nord[0], data: make([]complex128, nord[0])}
	for f, v := range lams[0][0] {
		A.data[f] = 1 / v
		A.logdet += math.Log(cmplx.Abs(v))
	}
	for l := 1; l < K; l++ {
		g := nord[l]
		A = A.refine(g)
		R := A.rows
		next := &blockInverse{
			rows:   R + 1,
			grid:   g,
			data:   make([]complex128, g*(R+1)*(R+1)),
			logdet: A.logdet,
		}
		b := make([]complex128, R)
		t := make([]complex128, R)
		bv := cblas128.Vector{N: R, Inc: 1, Data: b}
		tv := cblas128.Vector{N: R, Inc: 1, Data: t}
		for f := 0; f < g; f++ {
			off := 0
			for k := 0; k < l; k++ {
				r := nord[k] / g
				for q := 0; q < r; q++ {
					b[off+q] = lams[k][l][q*g+f]
				}
				off += r
			}
			Af := A.block(f)
			// t = A_f b, s = lams[l][l] - b^H t
			cblas128.Gemv(blas.NoTrans, 1, Af, bv, 0, tv)
			s := lams[l][l][f] - cblas128.Dotc(bv, tv)
			next.logdet += math.Log(cmplx.Abs(s))
			// A_f + t t^H / s
			cblas128.Gerc(1/s, tv, tv, Af)
			base := f * (R + 1) * (R + 1)
			for i := 0; i < R; i++ {
				copy(next.data[base+i*(R+1):base+i*(R+1)+R], Af.Data[i*R:(i+1)*R])
				next.data[base+i*(R+1)+R] = -t[i] / s
				next.data[base+R*(R+1)+i] = -cmplx.Conj(t[i]) / s
			}
			next.data[base+R*(R+1)+R] = 1 / s
		}
		A = next
	}
	c.gp.logger.Debug("inverse and log determinant rebuilt",
		zap.Ints("n", c.n), zap.Float64("logdet", A.logdet))
	return A
}

// solveTilde applies the inverse to per-task transformed vectors. Tasks
// outside the system map to empty vectors.
func (c *inverseCache) solveTilde(zt [][]complex128) [][]complex128 {
	out := make([][]complex128, len(c.n))
	for t := range out {
		out[t] = []complex128{}
	}
	if len(c.order) == 0 {
		return out
	}
	inv := c.get()
	R, g := inv.rows, inv.grid
	for _, t := range c.order {
		if len(zt[t]) != c.n[t] {
			panic(ErrInvalidShape)
		}
		out[t] = make([]complex128, c.n[t])
	}
	vec := make([]complex128, R)
	res := make([]complex128, R)
	vv := cblas128.Vector{N: R, Inc: 1, Data: vec}
	rv := cblas128.Vector{N: R, Inc: 1, Data: res}
	for f := 0; f < g; f++ {
		for k, t := range c.order {
			for q := 0; q < c.n[t]/g; q++ {
				vec[c.offsets[k]+q] = zt[t][q*g+f]
			}
		}
		cblas128.Gemv(blas.NoTrans, 1, inv.block(f), vv, 0, rv)
		for k, t := range c.order {
			for q := 0; q < c.n[t]/g; q++ {
				out[t][q*g+f] = res[c.offsets[k]+q]
			}
		}
	}
	return out
}

// gramSolve returns K^-1 y with y split by task.
func (c *inverseCache) gramSolve(y [][]float64) [][]float64 {
	tf := c.gp.tf
	zt := make([][]complex128, len(c.n))
	for t := range zt {
		if len(y[t]) != c.n[t] {
			panic(ErrInvalidShape)
		}
		zt[t] = transform.Forward(tf, transform.Complex(y[t]))
	}
	zt = c.solveTilde(zt)
	out := make([][]float64, len(c.n))
	for t := range out {
		out[t] = transform.Real(transform.Inverse(tf, zt[t]))
	}
	if c.gp.debug {
		c.checkSolve(y, out)
	}
	return out
}

func (c *inverseCache) logdet() float64 {
	if len(c.order) == 0 {
		return 0
	}
	return c.get().logdet
}
