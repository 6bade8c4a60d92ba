// Package spectral implements the frequency-domain building blocks of the
// feature pipeline: the real-FFT transform, power/magnitude spectrum
// reduction, mel filterbank construction and the DCT basis used for
// cepstral coefficients.
package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
)

// RealFFT computes the FFT of a real-valued, power-of-two sized frame and
// packs the result in the compact real-FFT layout: slot 0 holds the DC
// component, slot 1 holds the Nyquist component (both purely real), and
// interior bins follow as interleaved real/imaginary pairs.
type RealFFT struct {
	size int
}

// NewRealFFT creates a transform for frames of the given size.
// The size must be a positive power of two.
func NewRealFFT(size int) (*RealFFT, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("invalid config: fft size must be a power of two, got %d", size)
	}
	return &RealFFT{size: size}, nil
}

// Size returns the configured transform size
func (f *RealFFT) Size() int {
	return f.size
}

// Compute runs the transform on x and writes the packed result into packed.
// Both slices must have length Size().
func (f *RealFFT) Compute(x []float64, packed []float64) error {
	if len(x) != f.size || len(packed) != f.size {
		return fmt.Errorf("fft buffers must have length %d, got %d and %d",
			f.size, len(x), len(packed))
	}

	spectrum := fft.FFTReal(x)

	packed[0] = real(spectrum[0])
	packed[1] = real(spectrum[f.size/2])
	for k := 1; k < f.size/2; k++ {
		packed[2*k] = real(spectrum[k])
		packed[2*k+1] = imag(spectrum[k])
	}
	return nil
}
