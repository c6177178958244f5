package kern

import (
	"math"
	"math/bits"

	"github.com/lucasmaystre/gofastgp/seq"
)

var _ BinaryKernel = (*DigitalShiftInvariant)(nil)

// DigitalShiftInvariant is a Walsh series kernel for base 2 digital nets.
// Walsh functions of order k in [2^a, 2^(a+1)) carry weight 2^(-alpha a),
// which sums to
//     p(x, z) = 1 - r^i (2 - r),  r = 2^(1-alpha),
// where i is the number of leading zero bits of x XOR z.
type DigitalShiftInvariant struct {
	alpha []int
	r     []float64
}

func NewDigitalShiftInvariant(d, alpha int) (*DigitalShiftInvariant, error) {
	if alpha < 2 || alpha > 4 {
		return nil, ErrAlpha
	}
	k := &DigitalShiftInvariant{
		alpha: make([]int, d),
		r:     make([]float64, d),
	}
	for j := range k.alpha {
		k.alpha[j] = alpha
		k.r[j] = math.Ldexp(1, 1-alpha)
	}
	return k, nil
}

func (k *DigitalShiftInvariant) Dim() int {
	return len(k.alpha)
}

func (k *DigitalShiftInvariant) Alpha() []int {
	return k.alpha
}

func (k *DigitalShiftInvariant) Parts(dst, x, z []float64) {
	for j := range k.alpha {
		dst[j] = walshPart(toBinary(x[j])^toBinary(z[j]), k.r[j])
	}
}

func (k *DigitalShiftInvariant) PartsBinary(dst []float64, xb, zb []uint64) {
	for j := range k.alpha {
		dst[j] = walshPart(xb[j]^zb[j], k.r[j])
	}
}

func toBinary(x float64) uint64 {
	x -= math.Floor(x)
	b := uint64(math.Floor(x * (1 << seq.Precision)))
	if b >= 1<<seq.Precision {
		b = 1<<seq.Precision - 1
	}
	return b
}

func walshPart(delta uint64, r float64) float64 {
	if delta == 0 {
		return 1
	}
	i := seq.Precision - bits.Len64(delta)
	return 1 - math.Pow(r, float64(i))*(2-r)
}
