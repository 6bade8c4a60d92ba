// Package feature turns raw sample buffers into framed acoustic features:
// spectrogram, mel filterbank energies and MFCC cepstral coefficients. The
// numerical conventions follow the Kaldi toolkit closely enough for the
// output to feed decoders trained against it.
package feature

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/beyondboy/portable-decoder/window"
)

// Options is the contract every options struct implements: eager validation,
// flag registration under "<StructName>.<field>" keys, and serialization of
// the current values one "--StructName.field=value" line per field.
type Options interface {
	Check() error
	Register(fs *pflag.FlagSet)
	Configure() string
}

// windowValue adapts window.Type to the pflag.Value interface
type windowValue struct {
	t *window.Type
}

func (w windowValue) String() string {
	if w.t == nil {
		return ""
	}
	return w.t.String()
}

func (w windowValue) Set(name string) error {
	t, err := window.Parse(name)
	if err != nil {
		return err
	}
	*w.t = t
	return nil
}

func (w windowValue) Type() string { return "string" }

// FrameOptions configures the frame splitter. Lengths are in samples.
type FrameOptions struct {
	FrameLength  int
	FrameShift   int
	SampleRate   int
	WindowType   window.Type
	PreemphCoeff float64
	RemoveDC     bool
}

// DefaultFrameOptions returns the standard 25ms/10ms configuration for
// 16kHz speech input.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{
		FrameLength:  400,
		FrameShift:   160,
		SampleRate:   16000,
		WindowType:   window.Hamming,
		PreemphCoeff: 0.97,
		RemoveDC:     true,
	}
}

func (o *FrameOptions) Check() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("invalid config: sample_rate must be positive, got %d", o.SampleRate)
	}
	if o.FrameShift <= 0 || o.FrameLength < o.FrameShift {
		return fmt.Errorf("invalid config: need frame_length >= frame_shift > 0, got %d vs %d",
			o.FrameLength, o.FrameShift)
	}
	if o.PreemphCoeff < 0 || o.PreemphCoeff >= 1.0 {
		return fmt.Errorf("invalid config: preemph_coeff must be in [0, 1), got %g", o.PreemphCoeff)
	}
	return nil
}

func (o *FrameOptions) Register(fs *pflag.FlagSet) {
	fs.IntVar(&o.FrameLength, "FrameOpts.frame_length", o.FrameLength, "frame length in samples")
	fs.IntVar(&o.FrameShift, "FrameOpts.frame_shift", o.FrameShift, "frame shift in samples")
	fs.Float64Var(&o.PreemphCoeff, "FrameOpts.preemph_coeff", o.PreemphCoeff, "preemphasis coefficient")
	fs.IntVar(&o.SampleRate, "FrameOpts.sample_rate", o.SampleRate, "sample rate in Hz")
	fs.BoolVar(&o.RemoveDC, "FrameOpts.remove_dc", o.RemoveDC, "subtract the per-frame mean")
	fs.Var(windowValue{&o.WindowType}, "FrameOpts.window", "window type (none|rect|hamm|hann|blackman)")
}

func (o *FrameOptions) Configure() string {
	return fmt.Sprintf("--FrameOpts.frame_length=%d\n", o.FrameLength) +
		fmt.Sprintf("--FrameOpts.frame_shift=%d\n", o.FrameShift) +
		fmt.Sprintf("--FrameOpts.preemph_coeff=%v\n", o.PreemphCoeff) +
		fmt.Sprintf("--FrameOpts.sample_rate=%d\n", o.SampleRate) +
		fmt.Sprintf("--FrameOpts.remove_dc=%v\n", o.RemoveDC) +
		fmt.Sprintf("--FrameOpts.window=%s\n", o.WindowType)
}

// SpectrogramOptions configures the spectrogram computer.
// UseLogRawEnergy replaces the first output coefficient with the frame's
// log energy instead of the DC spectral bin.
type SpectrogramOptions struct {
	Frame           FrameOptions
	ApplyPow        bool
	ApplyLog        bool
	UseLogRawEnergy bool
}

// DefaultSpectrogramOptions returns log power spectrogram settings with
// log-energy substitution enabled.
func DefaultSpectrogramOptions() SpectrogramOptions {
	return SpectrogramOptions{
		Frame:           DefaultFrameOptions(),
		ApplyPow:        true,
		ApplyLog:        true,
		UseLogRawEnergy: true,
	}
}

func (o *SpectrogramOptions) Check() error {
	return o.Frame.Check()
}

func (o *SpectrogramOptions) Register(fs *pflag.FlagSet) {
	o.Frame.Register(fs)
	fs.BoolVar(&o.ApplyLog, "SpectrogramOpts.apply_log", o.ApplyLog, "log-spectrogram instead of linear")
	fs.BoolVar(&o.ApplyPow, "SpectrogramOpts.apply_pow", o.ApplyPow, "power spectrum instead of magnitude")
	fs.BoolVar(&o.UseLogRawEnergy, "SpectrogramOpts.use_log_raw_energy", o.UseLogRawEnergy,
		"replace bin 0 with the frame's log energy")
}

func (o *SpectrogramOptions) Configure() string {
	return o.Frame.Configure() +
		fmt.Sprintf("--SpectrogramOpts.apply_log=%v\n", o.ApplyLog) +
		fmt.Sprintf("--SpectrogramOpts.apply_pow=%v\n", o.ApplyPow) +
		fmt.Sprintf("--SpectrogramOpts.use_log_raw_energy=%v\n", o.UseLogRawEnergy)
}

// FbankOptions configures the mel filterbank computer. A non-positive
// UpperBound is resolved at construction time as Nyquist + UpperBound.
// The embedded spectrogram stage must stay linear (no log, no energy
// substitution): fbank takes its own log after mel binning.
type FbankOptions struct {
	Spectrogram SpectrogramOptions
	NumMelBins  int
	LowerBound  float64
	UpperBound  float64
	ApplyLog    bool
}

// DefaultFbankOptions returns 23 mel bins over [20, Nyquist] Hz with log
// mel energies.
func DefaultFbankOptions() FbankOptions {
	opts := FbankOptions{
		Spectrogram: DefaultSpectrogramOptions(),
		NumMelBins:  23,
		LowerBound:  20,
		UpperBound:  0,
		ApplyLog:    true,
	}
	opts.Spectrogram.ApplyLog = false
	opts.Spectrogram.UseLogRawEnergy = false
	return opts
}

func (o *FbankOptions) Check() error {
	if err := o.Spectrogram.Check(); err != nil {
		return err
	}
	if o.Spectrogram.ApplyLog || o.Spectrogram.UseLogRawEnergy {
		return fmt.Errorf("invalid config: fbank needs a linear spectrogram, " +
			"unset SpectrogramOpts.apply_log and SpectrogramOpts.use_log_raw_energy")
	}
	if o.NumMelBins < 3 {
		return fmt.Errorf("invalid config: num_mel_bins must be >= 3, got %d", o.NumMelBins)
	}
	if o.LowerBound < 0 {
		return fmt.Errorf("invalid config: lower_bound must be >= 0, got %g", o.LowerBound)
	}
	return nil
}

func (o *FbankOptions) Register(fs *pflag.FlagSet) {
	o.Spectrogram.Register(fs)
	fs.BoolVar(&o.ApplyLog, "FbankOpts.apply_log", o.ApplyLog, "log mel energies instead of linear")
	fs.Float64Var(&o.LowerBound, "FbankOpts.lower_bound", o.LowerBound, "lower frequency bound in Hz")
	fs.Float64Var(&o.UpperBound, "FbankOpts.upper_bound", o.UpperBound,
		"upper frequency bound in Hz, non-positive means offset from Nyquist")
	fs.IntVar(&o.NumMelBins, "FbankOpts.num_mel_bins", o.NumMelBins, "number of mel bins")
}

func (o *FbankOptions) Configure() string {
	return o.Spectrogram.Configure() +
		fmt.Sprintf("--FbankOpts.apply_log=%v\n", o.ApplyLog) +
		fmt.Sprintf("--FbankOpts.lower_bound=%v\n", o.LowerBound) +
		fmt.Sprintf("--FbankOpts.upper_bound=%v\n", o.UpperBound) +
		fmt.Sprintf("--FbankOpts.num_mel_bins=%d\n", o.NumMelBins)
}

// MfccOptions configures the MFCC computer. MFCC reads log mel energies
// from a power spectrum, so the embedded fbank must have ApplyLog set and
// its spectrogram must have ApplyPow set.
type MfccOptions struct {
	Fbank          FbankOptions
	NumCeps        int
	UseEnergy      bool
	CepstralLifter float64
}

// DefaultMfccOptions returns 13 cepstral coefficients with lifter 22 and
// energy substitution for C0.
func DefaultMfccOptions() MfccOptions {
	opts := MfccOptions{
		Fbank:          DefaultFbankOptions(),
		NumCeps:        13,
		UseEnergy:      true,
		CepstralLifter: 22.0,
	}
	opts.Fbank.ApplyLog = true
	opts.Fbank.Spectrogram.ApplyPow = true
	return opts
}

func (o *MfccOptions) Check() error {
	if err := o.Fbank.Check(); err != nil {
		return err
	}
	if !o.Fbank.ApplyLog || !o.Fbank.Spectrogram.ApplyPow {
		return fmt.Errorf("invalid config: mfcc needs log mel energies over a power spectrum, " +
			"set FbankOpts.apply_log and SpectrogramOpts.apply_pow")
	}
	if o.NumCeps < 1 {
		return fmt.Errorf("invalid config: num_ceps must be >= 1, got %d", o.NumCeps)
	}
	if o.NumCeps > o.Fbank.NumMelBins {
		return fmt.Errorf("invalid config: num_ceps %d exceeds num_mel_bins %d",
			o.NumCeps, o.Fbank.NumMelBins)
	}
	if o.CepstralLifter < 0 {
		return fmt.Errorf("invalid config: cepstral_lifter must be >= 0, got %g", o.CepstralLifter)
	}
	return nil
}

func (o *MfccOptions) Register(fs *pflag.FlagSet) {
	o.Fbank.Register(fs)
	fs.IntVar(&o.NumCeps, "MfccOpts.num_ceps", o.NumCeps, "number of cepstral coefficients")
	fs.BoolVar(&o.UseEnergy, "MfccOpts.use_energy", o.UseEnergy, "replace C0 with the frame's log energy")
	fs.Float64Var(&o.CepstralLifter, "MfccOpts.cepstral_lifter", o.CepstralLifter,
		"sinusoidal lifter scale, 0 disables liftering")
}

func (o *MfccOptions) Configure() string {
	return o.Fbank.Configure() +
		fmt.Sprintf("--MfccOpts.num_ceps=%d\n", o.NumCeps) +
		fmt.Sprintf("--MfccOpts.use_energy=%v\n", o.UseEnergy) +
		fmt.Sprintf("--MfccOpts.cepstral_lifter=%v\n", o.CepstralLifter)
}
