package feature

import (
	"fmt"
	"math"

	"github.com/beyondboy/portable-decoder/spectral"
)

// SpectrogramComputer computes a per-frame spectrum: the windowed frame is
// zero-padded to a power of two, run through the real FFT and reduced to a
// power or magnitude spectrum of PaddingLength()/2+1 bins.
type SpectrogramComputer struct {
	applyPow        bool
	applyLog        bool
	useLogRawEnergy bool

	paddingLength int
	splitter      *FrameSplitter
	fft           *spectral.RealFFT

	frameCache    []float32 // windowed frame
	paddedCache   []float64 // zero-padded FFT input
	realfftCache  []float64 // packed FFT output
	spectrumCache []float64
}

// NewSpectrogramComputer validates opts and builds the computer with its
// splitter, transform and scratch buffers.
func NewSpectrogramComputer(opts SpectrogramOptions) (*SpectrogramComputer, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}

	splitter, err := NewFrameSplitter(opts.Frame)
	if err != nil {
		return nil, err
	}

	paddingLength := splitter.PaddingLength()
	fft, err := spectral.NewRealFFT(paddingLength)
	if err != nil {
		return nil, err
	}

	return &SpectrogramComputer{
		applyPow:        opts.ApplyPow,
		applyLog:        opts.ApplyLog,
		useLogRawEnergy: opts.UseLogRawEnergy,
		paddingLength:   paddingLength,
		splitter:        splitter,
		fft:             fft,
		frameCache:      make([]float32, opts.Frame.FrameLength),
		paddedCache:     make([]float64, paddingLength),
		realfftCache:    make([]float64, paddingLength),
		spectrumCache:   make([]float64, paddingLength/2+1),
	}, nil
}

// PaddingLength returns the zero-padded FFT size
func (c *SpectrogramComputer) PaddingLength() int { return c.paddingLength }

// FeatureDim returns PaddingLength()/2 + 1
func (c *SpectrogramComputer) FeatureDim() int { return c.paddingLength/2 + 1 }

// NumFrames delegates to the frame splitter
func (c *SpectrogramComputer) NumFrames(numSamples int) int {
	return c.splitter.NumFrames(numSamples)
}

// Reset clears the splitter's streaming state
func (c *SpectrogramComputer) Reset() { c.splitter.Reset() }

// computeFrameSpectrum fills the internal spectrum cache for frame t and
// returns it along with the frame's raw energy. The slice is owned by the
// computer and overwritten on the next call.
func (c *SpectrogramComputer) computeFrameSpectrum(signal []float32, t int) ([]float64, float64) {
	var rawEnergy float64
	c.splitter.FrameForIndex(signal, t, c.frameCache, &rawEnergy)

	for i, v := range c.frameCache {
		c.paddedCache[i] = float64(v)
	}
	for i := len(c.frameCache); i < c.paddingLength; i++ {
		c.paddedCache[i] = 0
	}

	// sizes are fixed at construction, Compute cannot fail here
	_ = c.fft.Compute(c.paddedCache, c.realfftCache)
	spectral.ComputeSpectrum(c.realfftCache, c.spectrumCache, c.applyPow, c.applyLog)
	return c.spectrumCache, rawEnergy
}

// ComputeFrame writes the spectrum of frame t into out and returns the
// frame's raw energy. With UseLogRawEnergy set, out[0] becomes the log of
// the raw energy instead of the DC bin.
func (c *SpectrogramComputer) ComputeFrame(signal []float32, t int, out []float32) float64 {
	if len(out) < c.FeatureDim() {
		panic(fmt.Sprintf("feature: output buffer %d is less than feature dim %d", len(out), c.FeatureDim()))
	}

	spectrum, rawEnergy := c.computeFrameSpectrum(signal, t)
	for i, v := range spectrum {
		out[i] = float32(v)
	}
	if c.useLogRawEnergy {
		out[0] = float32(math.Log(math.Max(rawEnergy, spectral.EpsF32)))
	}
	return rawEnergy
}
