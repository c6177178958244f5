package utils

import (
	"math/bits"
)

// IsPow2 reports whether n is a power of two. Zero is not.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns log2(n) for a power of two n, and -1 for n == 0.
func Log2(n int) int {
	if n == 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}

// BitReverse reverses the lowest m bits of i.
func BitReverse(i uint64, m int) uint64 {
	if m == 0 {
		return 0
	}
	return bits.Reverse64(i) >> (64 - m)
}
