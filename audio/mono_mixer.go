// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MixChannels remaps interleaved samples from one channel count to another.
// Many channels fold to mono by averaging; mono spreads to many by duplication.
// Any other combination returns ErrUnsupportedLayout. dst is reused when large enough.
func MixChannels(dst, in []float32, from, to int) ([]float32, error) {
	if from <= 0 || to <= 0 {
		return dst[:0], fmt.Errorf("%w: %d -> %d", ErrUnsupportedLayout, from, to)
	}

	if len(in)%from != 0 {
		return dst[:0], ErrChannelMismatch
	}

	frames := len(in) / from
	n := frames * to
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	switch {
	case from == to:
		copy(dst, in)
	case to == 1:
		mixToMono(dst, in, from, frames)
	case from == 1:
		for f := range frames {
			for c := range to {
				dst[f*to+c] = in[f]
			}
		}
	default:
		return dst[:0], fmt.Errorf("%w: %d -> %d", ErrUnsupportedLayout, from, to)
	}

	return dst, nil
}

func mixToMono(dst, in []float32, channels, frames int) {
	// Optimize: cache division result
	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1 // f * 2
			dst[f] = (in[idx] + in[idx+1]) * 0.5
		}
	case 4: // Quad
		for f := range frames {
			idx := f << 2 // f * 4
			sum := in[idx] + in[idx+1] + in[idx+2] + in[idx+3]
			dst[f] = sum * 0.25
		}
	default: // Generic path
		for f := range frames {
			sum := float32(0)
			baseIdx := f * channels
			for c := range channels {
				sum += in[baseIdx+c]
			}
			dst[f] = sum * invChannels
		}
	}
}
