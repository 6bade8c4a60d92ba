package spectral

import (
	"math"
)

// ComputeDctMatrix builds the first numRows rows of the orthonormal DCT-II
// basis over numCols points. Row 0 is the constant basis scaled by
// sqrt(1/numCols), row k >= 1 is cos(pi/numCols * (n+0.5) * k) scaled by
// sqrt(2/numCols).
func ComputeDctMatrix(numRows, numCols int) [][]float64 {
	matrix := make([][]float64, numRows)

	scale0 := math.Sqrt(1.0 / float64(numCols))
	scale := math.Sqrt(2.0 / float64(numCols))

	for k := range matrix {
		matrix[k] = make([]float64, numCols)
		for n := 0; n < numCols; n++ {
			matrix[k][n] = math.Cos(math.Pi/float64(numCols)*(float64(n)+0.5)*float64(k))
			if k == 0 {
				matrix[k][n] *= scale0
			} else {
				matrix[k][n] *= scale
			}
		}
	}
	return matrix
}
