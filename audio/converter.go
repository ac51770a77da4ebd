// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Converter turns raw frames in one PCM format into another: sample layout,
// channel count and sample rate. Both formats are fixed at construction.
// Rate conversion keeps interpolation state between frames, so a Converter
// belongs to a single stream.
//
// A planar frame is read and written as a whole, so callers that cut streams
// into frames should convert with interleaved formats and use Interleave and
// Deinterleave at the edges.
type Converter struct {
	src PCMFormat
	dst PCMFormat

	resampler *Resampler // nil when the rates match

	decoded []float32
	mixed   []float32
}

func NewConverter(src, dst PCMFormat) (*Converter, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("source format: %w", err)
	}

	if err := dst.Validate(); err != nil {
		return nil, fmt.Errorf("destination format: %w", err)
	}

	if src.Channels != dst.Channels && src.Channels != 1 && dst.Channels != 1 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnsupportedLayout, src.Channels, dst.Channels)
	}

	c := &Converter{src: src, dst: dst}
	if src.SampleRate != dst.SampleRate {
		c.resampler = NewResampler(src.SampleRate, dst.SampleRate, dst.Channels)
	}

	return c, nil
}

func (c *Converter) Src() PCMFormat { return c.src }
func (c *Converter) Dst() PCMFormat { return c.dst }

// Convert returns frame converted to the destination format. With rate
// conversion the output length varies slightly from call to call because the
// interpolator holds back a short lookahead; Flush returns it at end of stream.
func (c *Converter) Convert(frame []byte) ([]byte, error) {
	if c.src == c.dst {
		if len(frame)%c.src.BytesPerFrame() != 0 {
			return nil, fmt.Errorf("%w: %d bytes", ErrPartialFrame, len(frame))
		}

		return append([]byte(nil), frame...), nil
	}

	var err error

	c.decoded, err = DecodeSamples(c.decoded, c.src, frame)
	if err != nil {
		return nil, err
	}

	c.mixed, err = MixChannels(c.mixed, c.decoded, c.src.Channels, c.dst.Channels)
	if err != nil {
		return nil, err
	}

	samples := c.mixed
	if c.resampler != nil {
		samples, err = c.resampler.Process(samples)
		if err != nil {
			return nil, err
		}
	}

	return EncodeSamples(c.dst, samples)
}

// Flush returns whatever the rate converter still holds and resets it.
// It returns nil when nothing is pending.
func (c *Converter) Flush() ([]byte, error) {
	if c.resampler == nil {
		return nil, nil
	}

	tail := c.resampler.Flush()
	if len(tail) == 0 {
		return nil, nil
	}

	return EncodeSamples(c.dst, tail)
}
