package feature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/beyondboy/portable-decoder/spectral"
)

// FbankComputer computes mel filterbank energies per frame. It owns a
// SpectrogramComputer kept in linear domain and applies the triangular mel
// filters to each frame's power spectrum, optionally taking the log.
type FbankComputer struct {
	numBins    int
	lowerBound float64
	upperBound float64
	applyLog   bool

	melFilters  [][]float64
	spectrogram *SpectrogramComputer
}

// NewFbankComputer validates opts, resolves the upper frequency bound
// against Nyquist and builds the mel filter table.
func NewFbankComputer(opts FbankOptions) (*FbankComputer, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}

	spectrogram, err := NewSpectrogramComputer(opts.Spectrogram)
	if err != nil {
		return nil, err
	}

	nyquist := float64(opts.Spectrogram.Frame.SampleRate) / 2
	upperBound := opts.UpperBound
	if upperBound <= 0 {
		upperBound = nyquist + opts.UpperBound
	}

	melFilters, err := spectral.ComputeMelFilters(spectrogram.FeatureDim(), opts.NumMelBins,
		nyquist, opts.LowerBound, upperBound)
	if err != nil {
		return nil, err
	}

	return &FbankComputer{
		numBins:     opts.NumMelBins,
		lowerBound:  opts.LowerBound,
		upperBound:  upperBound,
		applyLog:    opts.ApplyLog,
		melFilters:  melFilters,
		spectrogram: spectrogram,
	}, nil
}

// FeatureDim returns the number of mel bins
func (c *FbankComputer) FeatureDim() int { return c.numBins }

// NumFrames delegates to the owned spectrogram computer
func (c *FbankComputer) NumFrames(numSamples int) int {
	return c.spectrogram.NumFrames(numSamples)
}

// Reset clears the streaming state of the owned spectrogram computer
func (c *FbankComputer) Reset() { c.spectrogram.Reset() }

// computeFrameMel writes the frame's mel energies into mel and returns the
// raw frame energy. This is the float64 path used by the MFCC computer.
func (c *FbankComputer) computeFrameMel(signal []float32, t int, mel []float64) float64 {
	spectrum, rawEnergy := c.spectrogram.computeFrameSpectrum(signal, t)
	for m, weights := range c.melFilters {
		energy := floats.Dot(weights, spectrum)
		if c.applyLog {
			energy = math.Log(math.Max(energy, spectral.EpsF32))
		}
		mel[m] = energy
	}
	return rawEnergy
}

// ComputeFrame writes the frame's mel energies into out and returns the
// frame's raw energy.
func (c *FbankComputer) ComputeFrame(signal []float32, t int, out []float32) float64 {
	if len(out) < c.numBins {
		panic(fmt.Sprintf("feature: output buffer %d is less than feature dim %d", len(out), c.numBins))
	}

	spectrum, rawEnergy := c.spectrogram.computeFrameSpectrum(signal, t)
	for m, weights := range c.melFilters {
		energy := floats.Dot(weights, spectrum)
		if c.applyLog {
			energy = math.Log(math.Max(energy, spectral.EpsF32))
		}
		out[m] = float32(energy)
	}
	return rawEnergy
}
