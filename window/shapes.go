package window

import (
	"math"
)

// generateRectangular creates rectangular window coefficients
func generateRectangular(size int) []float64 {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	return coeffs
}

// generateHamming creates Hamming window coefficients
func generateHamming(size int) []float64 {
	coeffs := make([]float64, size)
	denominator := float64(size - 1)
	for i := range coeffs {
		coeffs[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return coeffs
}

// generateHanning creates Hanning window coefficients
func generateHanning(size int) []float64 {
	coeffs := make([]float64, size)
	denominator := float64(size - 1)
	for i := range coeffs {
		coeffs[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return coeffs
}

// generateBlackman creates Blackman window coefficients
func generateBlackman(size int) []float64 {
	coeffs := make([]float64, size)
	denominator := float64(size - 1)
	for i := range coeffs {
		x := float64(i) / denominator
		coeffs[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	}
	return coeffs
}
