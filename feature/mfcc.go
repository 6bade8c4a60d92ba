package feature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/beyondboy/portable-decoder/spectral"
)

// MfccComputer decorrelates log mel energies into cepstral coefficients: a
// DCT over the owned FbankComputer's output followed by sinusoidal
// liftering. With UseEnergy set, C0 is replaced by the frame's log energy.
type MfccComputer struct {
	numCeps        int
	useEnergy      bool
	cepstralLifter float64

	lifterCoeffs   []float64
	dctMatrix      [][]float64 // numCeps rows over numMelBins columns
	melEnergyCache []float64
	fbank          *FbankComputer
}

// NewMfccComputer validates opts and precomputes the DCT rows and lifter
// coefficients.
func NewMfccComputer(opts MfccOptions) (*MfccComputer, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}

	fbank, err := NewFbankComputer(opts.Fbank)
	if err != nil {
		return nil, err
	}

	numMelBins := fbank.FeatureDim()
	lifterCoeffs := make([]float64, opts.NumCeps)
	for i := range lifterCoeffs {
		lifterCoeffs[i] = 1.0
		if opts.CepstralLifter != 0 {
			lifterCoeffs[i] = 1.0 + 0.5*opts.CepstralLifter*math.Sin(math.Pi*float64(i)/opts.CepstralLifter)
		}
	}

	return &MfccComputer{
		numCeps:        opts.NumCeps,
		useEnergy:      opts.UseEnergy,
		cepstralLifter: opts.CepstralLifter,
		lifterCoeffs:   lifterCoeffs,
		dctMatrix:      spectral.ComputeDctMatrix(opts.NumCeps, numMelBins),
		melEnergyCache: make([]float64, numMelBins),
		fbank:          fbank,
	}, nil
}

// FeatureDim returns the number of cepstral coefficients
func (c *MfccComputer) FeatureDim() int { return c.numCeps }

// NumFrames delegates to the owned fbank computer
func (c *MfccComputer) NumFrames(numSamples int) int {
	return c.fbank.NumFrames(numSamples)
}

// Reset clears the streaming state of the owned fbank computer
func (c *MfccComputer) Reset() { c.fbank.Reset() }

// ComputeFrame writes the frame's cepstral coefficients into out and
// returns the frame's raw energy.
func (c *MfccComputer) ComputeFrame(signal []float32, t int, out []float32) float64 {
	if len(out) < c.numCeps {
		panic(fmt.Sprintf("feature: output buffer %d is less than feature dim %d", len(out), c.numCeps))
	}

	rawEnergy := c.fbank.computeFrameMel(signal, t, c.melEnergyCache)

	for k, row := range c.dctMatrix {
		out[k] = float32(floats.Dot(row, c.melEnergyCache) * c.lifterCoeffs[k])
	}
	if c.useEnergy {
		out[0] = float32(math.Log(math.Max(rawEnergy, spectral.EpsF32)))
	}
	return rawEnergy
}
