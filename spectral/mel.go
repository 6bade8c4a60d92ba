package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// HzToMel converts frequency in Hz to mel scale
func HzToMel(hz float64) float64 {
	return 1127.0 * math.Log(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Exp(mel/1127.0) - 1.0)
}

// ComputeMelFilters builds numMelBins triangular mel filters over numFFTBins
// spectrum bins spanning [0, nyquist] Hz. Filter centers are equally spaced
// on the mel scale between lowerBound and upperBound; each filter rises
// linearly (in mel) from zero at its left neighbor's center to one at its own
// center and falls back to zero at its right neighbor's center. Bins exactly
// at a boundary get weight zero.
func ComputeMelFilters(numFFTBins, numMelBins int, nyquist, lowerBound, upperBound float64) ([][]float64, error) {
	if numMelBins < 3 {
		return nil, fmt.Errorf("invalid config: need at least 3 mel bins, got %d", numMelBins)
	}
	if numFFTBins < 2 {
		return nil, fmt.Errorf("invalid config: need at least 2 fft bins, got %d", numFFTBins)
	}
	if lowerBound < 0 || upperBound <= lowerBound || upperBound > nyquist {
		return nil, fmt.Errorf("invalid config: bad frequency bounds [%g, %g] for nyquist %g",
			lowerBound, upperBound, nyquist)
	}

	lowMel := HzToMel(lowerBound)
	highMel := HzToMel(upperBound)

	// numMelBins+2 equally spaced centers on the mel scale
	centers := make([]float64, numMelBins+2)
	floats.Span(centers, lowMel, highMel)

	binWidth := nyquist / float64(numFFTBins-1)

	weights := make([][]float64, numMelBins)
	for m := range weights {
		weights[m] = make([]float64, numFFTBins)
		left, center, right := centers[m], centers[m+1], centers[m+2]

		for k := 0; k < numFFTBins; k++ {
			mel := HzToMel(float64(k) * binWidth)
			switch {
			case mel <= left || mel >= right:
				// outside the triangle
			case mel <= center:
				weights[m][k] = (mel - left) / (center - left)
			default:
				weights[m][k] = (right - mel) / (right - center)
			}
		}
	}
	return weights, nil
}
