package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Concatenate multiple vectors.
func ConcatVecs(vecs ...*mat.VecDense) *mat.VecDense {
	size := 0
	for _, vec := range vecs {
		size += vec.Len()
	}
	if size == 0 {
		return &mat.VecDense{}
	}
	out := mat.NewVecDense(size, nil)
	offset := 0
	for _, vec := range vecs {
		if vec.Len() == 0 {
			continue
		}
		out.SliceVec(offset, offset+vec.Len()).(*mat.VecDense).CopyVec(vec)
		offset += vec.Len()
	}
	return out
}

// Make a block matrix from a grid of blocks. Block (i, j) must have
// rows[i] rows and cols[j] columns; nil blocks are left at zero.
func BlockMatrix(rows, cols []int, block func(i, j int) mat.Matrix) *mat.Dense {
	r, c := 0, 0
	for _, v := range rows {
		r += v
	}
	for _, v := range cols {
		c += v
	}
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(r, c, nil)
	roff := 0
	for i, ri := range rows {
		coff := 0
		for j, cj := range cols {
			if ri > 0 && cj > 0 {
				if b := block(i, j); b != nil {
					out.Slice(roff, roff+ri, coff, coff+cj).(*mat.Dense).Copy(b)
				}
			}
			coff += cj
		}
		roff += ri
	}
	return out
}

// Make a block diagonal matrix.
func BlockDiag(mats ...mat.Matrix) *mat.Dense {
	sizes := make([]int, len(mats))
	for i, m := range mats {
		sizes[i], _ = m.Dims()
	}
	return BlockMatrix(sizes, sizes, func(i, j int) mat.Matrix {
		if i != j {
			return nil
		}
		return mats[i]
	})
}

// Identity Matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}
