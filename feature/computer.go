package feature

import (
	"fmt"
)

// Computer is the per-frame computation contract shared by the spectrogram,
// fbank and mfcc computers. ComputeFrame writes FeatureDim() values for
// frame t into out and returns the frame's raw energy, for callers that
// substitute it into the first output coefficient. Reset returns the
// underlying frame splitter to its initial streaming state.
type Computer interface {
	ComputeFrame(signal []float32, t int, out []float32) float64
	FeatureDim() int
	NumFrames(numSamples int) int
	Reset()
}

// ComputeFeature drives computer over the whole signal, writing one feature
// row per frame left-aligned into each stride-sized slot of out. Returns
// the number of frames written; zero or negative means the signal was too
// short. Streaming state is left as the computer's last frame set it, the
// caller decides when to Reset.
func ComputeFeature(computer Computer, signal []float32, out []float32, stride int) int {
	if stride < computer.FeatureDim() {
		panic(fmt.Sprintf("feature: stride %d is less than feature dim %d", stride, computer.FeatureDim()))
	}
	numFrames := computer.NumFrames(len(signal))
	if numFrames <= 0 {
		return numFrames
	}
	if len(out) < stride*numFrames {
		panic(fmt.Sprintf("feature: output buffer %d is less than %d rows of stride %d",
			len(out), numFrames, stride))
	}
	for t := 0; t < numFrames; t++ {
		computer.ComputeFrame(signal, t, out[stride*t:stride*t+computer.FeatureDim()])
	}
	return numFrames
}
