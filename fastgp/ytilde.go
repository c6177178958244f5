package fastgp

import (
	"go.uber.org/zap"

	"github.com/lucasmaystre/gofastgp/transform"
)

// ytildeCache holds the transform of the observations of task l, extended
// by doubling as data arrive.
type ytildeCache struct {
	gp    *FastGP
	l     int
	n     int
	value []complex128
}

func (c *ytildeCache) get() []complex128 {
	tf := c.gp.tf
	y := c.gp.y[c.l]
	n := c.gp.n[c.l]
	if c.value == nil || c.n <= 1 || n <= 1 {
		c.value = transform.Forward(tf, transform.Complex(y[:n]))
		c.n = n
		return c.value
	}
	for c.n < n {
		next := transform.Forward(tf, transform.Complex(y[c.n:2*c.n]))
		c.value = transform.Double(tf, c.value, next)
		c.n *= 2
		if c.gp.debug {
			ref := transform.Forward(tf, transform.Complex(y[:c.n]))
			if diff := transform.MaxAbsDiff(c.value, ref); diff > 1e-7 {
				c.gp.logger.Error("observation transform mismatch", zap.Int("task", c.l), zap.Float64("diff", diff))
				panic(ErrDebugMismatch)
			}
		}
	}
	return c.value
}
