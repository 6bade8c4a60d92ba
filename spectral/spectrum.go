package spectral

import (
	"math"
)

// EpsF32 is the floor applied before taking logarithms, the smallest value
// representable as a normalized 32-bit float increment above one.
const EpsF32 = 1.1920928955078125e-7

// ComputeSpectrum converts a packed real-FFT result (see RealFFT.Compute for
// the layout) into a spectrum of len(realfft)/2+1 values: DC, the interior
// bins, then Nyquist. With applyPow set each value is the squared magnitude,
// otherwise the magnitude. With applyLog set the natural log is taken,
// floored at EpsF32 to avoid log(0).
func ComputeSpectrum(realfft []float64, spectrum []float64, applyPow, applyLog bool) {
	dim := len(realfft)
	numBins := dim/2 + 1
	if len(spectrum) < numBins {
		panic("spectral: spectrum buffer shorter than dim/2+1")
	}

	spectrum[0] = realfft[0] * realfft[0]
	spectrum[dim/2] = realfft[1] * realfft[1]
	for k := 1; k < dim/2; k++ {
		re, im := realfft[2*k], realfft[2*k+1]
		spectrum[k] = re*re + im*im
	}

	for k := 0; k < numBins; k++ {
		if !applyPow {
			spectrum[k] = math.Sqrt(spectrum[k])
		}
		if applyLog {
			spectrum[k] = math.Log(math.Max(spectrum[k], EpsF32))
		}
	}
}
