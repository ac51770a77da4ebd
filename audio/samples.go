// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/audcap/utils"
)

// DecodeSamples converts raw bytes in format p to interleaved float32 samples.
// dst is reused when it has enough capacity.
func DecodeSamples(dst []float32, p PCMFormat, b []byte) ([]float32, error) {
	bpf := p.BytesPerFrame()
	if bpf == 0 {
		return dst[:0], fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
	}

	if len(b)%bpf != 0 {
		return dst[:0], fmt.Errorf("%w: %d bytes, %d per frame", ErrPartialFrame, len(b), bpf)
	}

	frames := len(b) / bpf
	n := frames * p.Channels
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	switch p.Sample {
	case S16:
		for i := range n {
			dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(b[2*i:])))
		}
	case F32:
		for i := range n {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case F32Planar:
		// plane c holds frames samples of channel c
		for c := range p.Channels {
			plane := b[c*frames*4:]
			for f := range frames {
				dst[f*p.Channels+c] = math.Float32frombits(binary.LittleEndian.Uint32(plane[4*f:]))
			}
		}
	}

	return dst, nil
}

// EncodeSamples converts interleaved float32 samples to raw bytes in format p.
func EncodeSamples(p PCMFormat, samples []float32) ([]byte, error) {
	if p.BytesPerFrame() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
	}

	if len(samples)%p.Channels != 0 {
		return nil, ErrChannelMismatch
	}

	frames := len(samples) / p.Channels
	out := make([]byte, frames*p.BytesPerFrame())

	switch p.Sample {
	case S16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(utils.Float32ToInt16(s)))
		}
	case F32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
		}
	case F32Planar:
		for c := range p.Channels {
			plane := out[c*frames*4:]
			for f := range frames {
				binary.LittleEndian.PutUint32(plane[4*f:], math.Float32bits(samples[f*p.Channels+c]))
			}
		}
	}

	return out, nil
}

// Interleave rearranges one whole planar buffer in format p into the layout
// of p.Interleaved(). A buffer that is already interleaved is returned as is.
// Planes are located from the buffer length, so b must hold complete frames
// of every channel and cannot be a slice of a longer planar buffer.
func Interleave(p PCMFormat, b []byte) ([]byte, error) {
	if !p.Sample.Planar() {
		return b, nil
	}
	return relayout(p, b, true)
}

// Deinterleave is the inverse of Interleave: b holds whole interleaved
// frames and the result has one plane per channel.
func Deinterleave(p PCMFormat, b []byte) ([]byte, error) {
	if !p.Sample.Planar() {
		return b, nil
	}
	return relayout(p, b, false)
}

func relayout(p PCMFormat, b []byte, toInterleaved bool) ([]byte, error) {
	bpf := p.BytesPerFrame()
	if bpf == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p)
	}

	if len(b)%bpf != 0 {
		return nil, fmt.Errorf("%w: %d bytes, %d per frame", ErrPartialFrame, len(b), bpf)
	}

	bps := p.Sample.BytesPerSample()
	frames := len(b) / bpf
	out := make([]byte, len(b))

	for c := range p.Channels {
		for f := range frames {
			planar := (c*frames + f) * bps
			interleaved := (f*p.Channels + c) * bps
			if toInterleaved {
				copy(out[interleaved:interleaved+bps], b[planar:planar+bps])
			} else {
				copy(out[planar:planar+bps], b[interleaved:interleaved+bps])
			}
		}
	}

	return out, nil
}
