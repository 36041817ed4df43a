package optctl

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// copyVec returns a copy of the provided vector, nil stays nil.
func copyVec(a []float64) []float64 {
	if a == nil {
		return nil
	}
	b := make([]float64, len(a))
	copy(b, a)
	return b
}

// vecEqual returns whether both vectors are bitwise equal.
func vecEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return floats.Equal(a, b)
}

// newBlock returns a zero r x c matrix, or an empty one if either dimension is zero.
func newBlock(r, c int) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, nil)
}

// denseCopy returns a copy of the provided matrix as a Dense.
func denseCopy(m mat.Matrix) *mat.Dense {
	r, c := dims(m)
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}

// dims returns the dimensions of the matrix, zero for nil or empty ones.
// A nil *mat.Dense stored in the interface counts as nil.
func dims(m mat.Matrix) (int, int) {
	if m == nil {
		return 0, 0
	}
	if d, ok := m.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return 0, 0
	}
	return m.Dims()
}

// countNonZeros returns the number of non zero entries.
func countNonZeros(m mat.Matrix) (n int) {
	r, c := dims(m)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				n++
			}
		}
	}
	return
}

// firstNonFinite returns the index of the first non finite value, or -1.
func firstNonFinite(a []float64) int {
	if !floats.HasNaN(a) {
		for i, v := range a {
			if math.IsInf(v, 0) {
				return i
			}
		}
		return -1
	}
	for i, v := range a {
		if math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// forwardDiff stores (pert - nom) / h in dst.
func forwardDiff(dst, pert, nom []float64, h float64) {
	floats.SubTo(dst, pert, nom)
	floats.Scale(1/h, dst)
}

// uniform draws a value in [lo, hi] from the provided source.
func uniform(src Source, lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	return lo + (hi-lo)*src.Float64()
}
