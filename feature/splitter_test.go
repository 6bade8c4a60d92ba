package feature

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyondboy/portable-decoder/window"
)

// plainFrameOptions disables dc removal, preemphasis and windowing so frame
// contents can be checked against raw signal slices.
func plainFrameOptions() FrameOptions {
	return FrameOptions{
		FrameLength: 400,
		FrameShift:  160,
		SampleRate:  16000,
		WindowType:  window.None,
	}
}

func randomSignal(n int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	signal := make([]float32, n)
	for i := range signal {
		signal[i] = float32(rng.Float64()*2 - 1)
	}
	return signal
}

func TestNumFramesClosedForm(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	// floor((2000-400)/160)+1 = 11
	assert.Equal(t, 11, s.NumFrames(2000))
	assert.Equal(t, 1, s.NumFrames(400))
	assert.Equal(t, 1, s.NumFrames(559))
	assert.Equal(t, 2, s.NumFrames(560))
}

func TestNumFramesDegenerate(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	// too short for one frame: zero or negative, never clamped to one
	assert.Equal(t, 0, s.NumFrames(399))
	assert.Equal(t, 0, s.NumFrames(240))
	assert.Equal(t, -1, s.NumFrames(100))
}

func TestPaddingLength(t *testing.T) {
	for _, tc := range []struct {
		frameLength int
		padding     int
	}{
		{400, 512},
		{512, 512},
		{200, 256},
		{1, 1},
	} {
		opts := plainFrameOptions()
		opts.FrameLength = tc.frameLength
		opts.FrameShift = tc.frameLength
		s, err := NewFrameSplitter(opts)
		require.NoError(t, err)
		assert.Equal(t, tc.padding, s.PaddingLength(), "frame length %d", tc.frameLength)
	}
}

func TestFrameContents(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	signal := make([]float32, 2000)
	for i := range signal {
		signal[i] = float32(i)
	}

	const stride = 400
	frames := make([]float32, 11*stride)
	numFrames := s.Frame(signal, frames, stride)
	require.Equal(t, 11, numFrames)

	for f := 0; f < numFrames; f++ {
		row := frames[f*stride : f*stride+400]
		assert.Equal(t, signal[f*160:f*160+400], row, "frame %d", f)
	}
}

func TestFrameForIndexRawEnergy(t *testing.T) {
	opts := plainFrameOptions()
	opts.FrameLength = 4
	opts.FrameShift = 2
	s, err := NewFrameSplitter(opts)
	require.NoError(t, err)

	signal := []float32{1, 2, 3, 4}
	frame := make([]float32, 4)
	var rawEnergy float64
	s.FrameForIndex(signal, 0, frame, &rawEnergy)

	assert.InDelta(t, 1+4+9+16, rawEnergy, 1e-9)
}

func TestFrameForIndexRemoveDC(t *testing.T) {
	opts := plainFrameOptions()
	opts.FrameLength = 4
	opts.FrameShift = 2
	opts.RemoveDC = true
	s, err := NewFrameSplitter(opts)
	require.NoError(t, err)

	signal := []float32{1, 2, 3, 4}
	frame := make([]float32, 4)
	var rawEnergy float64
	s.FrameForIndex(signal, 0, frame, &rawEnergy)

	// mean 2.5 subtracted before the energy is read
	assert.Equal(t, []float32{-1.5, -0.5, 0.5, 1.5}, frame)
	assert.InDelta(t, 2.25+0.25+0.25+2.25, rawEnergy, 1e-9)
}

func TestPreemphasize(t *testing.T) {
	frame := []float32{2, 2, 2, 2}
	Preemphasize(frame, 0.5)

	// x[0] uses itself as the previous sample
	assert.Equal(t, []float32{1, 1, 1, 1}, frame)

	// coeff zero is the identity
	frame = []float32{1, 2, 3}
	Preemphasize(frame, 0)
	assert.Equal(t, []float32{1, 2, 3}, frame)
}

func TestFrameAppliesWindow(t *testing.T) {
	opts := plainFrameOptions()
	opts.FrameLength = 8
	opts.FrameShift = 8
	opts.WindowType = window.Hamming
	s, err := NewFrameSplitter(opts)
	require.NoError(t, err)

	signal := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	frame := make([]float32, 8)
	s.FrameForIndex(signal, 0, frame, nil)

	win, err := window.Compute(8, window.Hamming)
	require.NoError(t, err)
	for i := range frame {
		assert.InDelta(t, win[i], float64(frame[i]), 1e-6, "sample %d", i)
	}
}

func TestStreamingEquivalenceTwoChunks(t *testing.T) {
	const numSamples = 2000
	const stride = 400
	signal := randomSignal(numSamples, 1)

	whole, err := NewFrameSplitter(DefaultFrameOptions())
	require.NoError(t, err)
	wantFrames := make([]float32, whole.NumFrames(numSamples)*stride)
	wantCount := whole.Frame(signal, wantFrames, stride)
	require.Equal(t, 11, wantCount)

	// any split boundary, including chunks too short for a single frame
	for _, split := range []int{100, 399, 400, 560, 641, 1000, 1601, 1999} {
		chunked, err := NewFrameSplitter(DefaultFrameOptions())
		require.NoError(t, err)

		gotFrames := make([]float32, wantCount*stride)
		written := 0
		for _, chunk := range [][]float32{signal[:split], signal[split:]} {
			n := chunked.NumFrames(len(chunk))
			if n > 0 {
				n = chunked.Frame(chunk, gotFrames[written*stride:], stride)
				written += n
			} else {
				chunked.Frame(chunk, nil, stride)
			}
		}

		require.Equal(t, wantCount, written, "split at %d", split)
		assert.Equal(t, wantFrames, gotFrames, "split at %d", split)
	}
}

func TestStreamingEquivalenceManyChunks(t *testing.T) {
	const numSamples = 3200
	const stride = 512
	signal := randomSignal(numSamples, 2)

	whole, err := NewFrameSplitter(DefaultFrameOptions())
	require.NoError(t, err)
	wantCount := whole.NumFrames(numSamples)
	wantFrames := make([]float32, wantCount*stride)
	require.Equal(t, wantCount, whole.Frame(signal, wantFrames, stride))

	chunked, err := NewFrameSplitter(DefaultFrameOptions())
	require.NoError(t, err)

	gotFrames := make([]float32, wantCount*stride)
	written := 0
	for _, boundary := range [][2]int{{0, 160}, {160, 900}, {900, 1000}, {1000, 2500}, {2500, 3200}} {
		chunk := signal[boundary[0]:boundary[1]]
		if chunked.NumFrames(len(chunk)) > 0 {
			written += chunked.Frame(chunk, gotFrames[written*stride:], stride)
		} else {
			chunked.Frame(chunk, nil, stride)
		}
	}

	require.Equal(t, wantCount, written)
	assert.Equal(t, wantFrames, gotFrames)
}

func TestResetClearsCarry(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	signal := randomSignal(1000, 3)
	frames := make([]float32, s.NumFrames(1000)*400)
	s.Frame(signal, frames, 400)
	// 1000 samples leave 1000 - 4*160 = 360 carried over
	assert.Equal(t, 3, s.NumFrames(440))

	s.Reset()
	assert.Equal(t, 1, s.NumFrames(440))
}

func TestFramePanicsOnBadStride(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	assert.Panics(t, func() {
		s.Frame(make([]float32, 2000), make([]float32, 2000), 399)
	})
}

func TestFrameForIndexPanicsOutOfRange(t *testing.T) {
	s, err := NewFrameSplitter(plainFrameOptions())
	require.NoError(t, err)

	signal := make([]float32, 400)
	frame := make([]float32, 400)
	assert.Panics(t, func() {
		s.FrameForIndex(signal, 1, frame, nil)
	})
	assert.Panics(t, func() {
		s.FrameForIndex(signal, -1, frame, nil)
	})
}

func TestNewFrameSplitterInvalidConfig(t *testing.T) {
	opts := plainFrameOptions()
	opts.FrameLength = 100
	opts.FrameShift = 160
	_, err := NewFrameSplitter(opts)
	assert.Error(t, err)

	opts = plainFrameOptions()
	opts.PreemphCoeff = 1.0
	_, err = NewFrameSplitter(opts)
	assert.Error(t, err)

	opts = plainFrameOptions()
	opts.SampleRate = 0
	_, err = NewFrameSplitter(opts)
	assert.Error(t, err)
}
