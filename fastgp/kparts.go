package fastgp

import (
	"github.com/lucasmaystre/gofastgp/kern"
)

// kpartsCache holds the kernel parts between each point of task l0 and the
// first point of task l1, row-major. Parts do not depend on
// hyperparameters, so rows are only ever appended.
type kpartsCache struct {
	gp     *FastGP
	l0, l1 int
	n      int
	parts  []float64
}

// get returns the parts of the first n points, extending the cache if
// needed.
func (c *kpartsCache) get(n int) []float64 {
	d := c.gp.d
	if n > c.n {
		x, xb := c.gp.seqs[c.l0].Slice(c.n, n)
		z, zb := c.gp.seqs[c.l1].Slice(0, 1)
		bk, binary := c.gp.kernel.(kern.BinaryKernel)
		binary = binary && xb != nil && zb != nil
		start := len(c.parts)
		c.parts = append(c.parts, make([]float64, (n-c.n)*d)...)
		for i := 0; i < n-c.n; i++ {
			dst := c.parts[start+i*d : start+(i+1)*d]
			if binary {
				bk.PartsBinary(dst, xb[i*d:(i+1)*d], zb)
			} else {
				c.gp.kernel.Parts(dst, x[i*d:(i+1)*d], z)
			}
		}
		c.n = n
	}
	return c.parts[:n*d]
}
