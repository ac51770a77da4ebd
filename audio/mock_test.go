package audio

import "math"

// sineFrames generates frames interleaved sample instants of a sine wave,
// identical on every channel.
func sineFrames(sampleRate, channels, frames int, frequency float64) []float32 {
	out := make([]float32, frames*channels)
	for f := range frames {
		t := float64(f) / float64(sampleRate)
		v := float32(math.Sin(2 * math.Pi * frequency * t))
		for c := range channels {
			out[f*channels+c] = v
		}
	}
	return out
}

// waveFrames generates interleaved samples from a per-sample, per-channel function.
func waveFrames(channels, frames int, waveform func(sample int, channel int) float32) []float32 {
	out := make([]float32, frames*channels)
	for f := range frames {
		for c := range channels {
			out[f*channels+c] = waveform(f, c)
		}
	}
	return out
}

// constantFrames fills every sample with value.
func constantFrames(channels, frames int, value float32) []float32 {
	return waveFrames(channels, frames, func(int, int) float32 { return value })
}
