package feature

import (
	"fmt"

	"github.com/beyondboy/portable-decoder/logging"
	"github.com/beyondboy/portable-decoder/window"
)

// Preemphasize applies the high-pass filter x[i] -= coeff*x[i-1] in place.
// The sample before the frame is taken to be x[0], so the first sample
// becomes x[0]*(1-coeff).
func Preemphasize(frame []float32, coeff float64) {
	if coeff == 0 {
		return
	}
	for i := len(frame) - 1; i > 0; i-- {
		frame[i] -= float32(coeff * float64(frame[i-1]))
	}
	if len(frame) > 0 {
		frame[0] -= float32(coeff * float64(frame[0]))
	}
}

// roundUpToPowerOfTwo returns the smallest power of two >= n
func roundUpToPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// floorDiv is integer division rounding toward negative infinity, so that
// degenerate frame counts come out zero or negative instead of wrapping to
// one the way truncating division would.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// FrameSplitter slices a sample stream into overlapping fixed-length frames
// and applies DC removal, preemphasis and windowing per frame. It supports
// both one-shot use and incremental chunked input: samples at the end of a
// chunk that do not fill a whole frame are carried over and stitched onto
// the next chunk, so that any partitioning of a signal into successive
// Frame calls yields the same frames as a single call over the whole signal.
type FrameSplitter struct {
	opts   FrameOptions
	window []float64 // nil means no windowing

	// onlineUse[0:prevDiscard] caches the unconsumed tail of the previous
	// chunk; the rest is workspace for stashing the next tail.
	onlineUse   []float32
	prevDiscard int

	logger logging.Logger
}

// NewFrameSplitter validates opts and builds the splitter with its window
// table and carry buffer.
func NewFrameSplitter(opts FrameOptions) (*FrameSplitter, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}

	win, err := window.Compute(opts.FrameLength, opts.WindowType)
	if err != nil {
		return nil, fmt.Errorf("building window table: %w", err)
	}

	return &FrameSplitter{
		opts:      opts,
		window:    win,
		onlineUse: make([]float32, 2*opts.FrameLength),
		logger:    logging.GetGlobalLogger(),
	}, nil
}

// FrameLength returns the frame length in samples
func (s *FrameSplitter) FrameLength() int { return s.opts.FrameLength }

// FrameShift returns the frame shift in samples
func (s *FrameSplitter) FrameShift() int { return s.opts.FrameShift }

// SampleRate returns the sample rate in Hz
func (s *FrameSplitter) SampleRate() int { return s.opts.SampleRate }

// PaddingLength returns the smallest power of two >= FrameLength, the size
// of the zero-padded FFT input.
func (s *FrameSplitter) PaddingLength() int {
	return roundUpToPowerOfTwo(s.opts.FrameLength)
}

// Reset clears the streaming carry state. Call it between independent
// signals that reuse the same splitter.
func (s *FrameSplitter) Reset() {
	s.prevDiscard = 0
}

// NumFrames computes the number of whole frames available from numSamples
// new samples plus the carried-over tail. A zero result is reported as a
// warning, negative results are left to the caller to check.
func (s *FrameSplitter) NumFrames(numSamples int) int {
	numFrames := floorDiv(numSamples+s.prevDiscard-s.opts.FrameLength, s.opts.FrameShift) + 1
	if numFrames == 0 {
		s.logger.Warn("number of samples is less than frame length", logging.Fields{
			"num_samples":  numSamples + s.prevDiscard,
			"frame_length": s.opts.FrameLength,
		})
	}
	return numFrames
}

// Frame splits the whole signal into frames, writing each one left-aligned
// into its stride-sized slot of frames. Returns the number of frames
// written. Streaming state carries into the next call; it is not reset here.
func (s *FrameSplitter) Frame(signal []float32, frames []float32, stride int) int {
	if stride < s.opts.FrameLength {
		panic(fmt.Sprintf("feature: stride %d is less than frame length %d", stride, s.opts.FrameLength))
	}
	numFrames := s.NumFrames(len(signal))
	if numFrames <= 0 {
		// chunk too short for a single frame, carry everything over
		s.stashDiscard(signal, 0)
		return numFrames
	}
	for t := 0; t < numFrames; t++ {
		s.FrameForIndex(signal, t, frames[stride*t:stride*t+s.opts.FrameLength], nil)
	}
	return numFrames
}

// FrameForIndex materializes frame index from the carried tail plus signal,
// then applies DC removal, preemphasis and the window table. If rawEnergy
// is non-nil it receives the frame's pre-window sum of squares, taken after
// DC removal and before preemphasis.
//
// Frames must be visited in order: materializing the last frame of a chunk
// also stashes the chunk's unconsumed tail for the next call.
func (s *FrameSplitter) FrameForIndex(signal []float32, index int, frame []float32, rawEnergy *float64) {
	frameLength := s.opts.FrameLength
	if len(frame) < frameLength {
		panic(fmt.Sprintf("feature: frame buffer %d is less than frame length %d", len(frame), frameLength))
	}
	numFrames := s.NumFrames(len(signal))
	if index < 0 || index >= numFrames {
		panic(fmt.Sprintf("feature: frame index %d out of range [0, %d)", index, numFrames))
	}
	frame = frame[:frameLength]

	start := index*s.opts.FrameShift - s.prevDiscard
	if start >= 0 {
		copy(frame, signal[start:start+frameLength])
	} else {
		s.fixFrame(signal, index, frame)
	}

	if index == numFrames-1 {
		s.stashDiscard(signal, numFrames)
	}

	if s.opts.RemoveDC {
		sum := 0.0
		for _, v := range frame {
			sum += float64(v)
		}
		mean := float32(sum / float64(frameLength))
		for i := range frame {
			frame[i] -= mean
		}
	}

	if rawEnergy != nil {
		energy := 0.0
		for _, v := range frame {
			energy += float64(v) * float64(v)
		}
		*rawEnergy = energy
	}

	if s.opts.PreemphCoeff > 0 {
		Preemphasize(frame, s.opts.PreemphCoeff)
	}

	if s.window != nil {
		for i := range frame {
			frame[i] *= float32(s.window[i])
		}
	}
}

// fixFrame stitches a frame that begins inside the carried tail: the head
// comes from the carry buffer, the rest from the current signal.
func (s *FrameSplitter) fixFrame(signal []float32, index int, frame []float32) {
	carried := index * s.opts.FrameShift
	n := copy(frame, s.onlineUse[carried:s.prevDiscard])
	copy(frame[n:], signal)
}

// stashDiscard saves the samples past the last whole frame into the carry
// buffer. The tail length is frameLength - frameShift + r for some
// r < frameShift, so it always fits.
func (s *FrameSplitter) stashDiscard(signal []float32, numFrames int) {
	consumed := numFrames * s.opts.FrameShift
	newDiscard := s.prevDiscard + len(signal) - consumed

	if consumed < s.prevDiscard {
		// part of the old carry is still unconsumed, shift it down
		n := copy(s.onlineUse, s.onlineUse[consumed:s.prevDiscard])
		copy(s.onlineUse[n:newDiscard], signal)
	} else {
		copy(s.onlineUse[:newDiscard], signal[consumed-s.prevDiscard:])
	}
	s.prevDiscard = newDiscard
}
