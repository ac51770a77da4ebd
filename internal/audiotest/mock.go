// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/ik5/audcap/audio"
)

// ChunkSource is a test helper that replays a byte stream in chunks of
// scripted sizes, the way a capture device delivers irregular bursts.
// It implements audio.ChunkSource.
type ChunkSource struct {
	format audio.PCMFormat
	data   []byte
	sizes  []int // chunk sizes, cycled
	off    int
	next   int
	closed bool

	// Err, when set, is returned instead of io.EOF once data is exhausted.
	Err error
}

// NewChunkSource replays data in chunks of the given sizes, cycling through
// sizes until data runs out. The last chunk may be shorter.
func NewChunkSource(format audio.PCMFormat, data []byte, sizes ...int) *ChunkSource {
	if len(sizes) == 0 {
		sizes = []int{len(data)}
	}

	return &ChunkSource{
		format: format,
		data:   data,
		sizes:  sizes,
	}
}

func (s *ChunkSource) Format() audio.PCMFormat { return s.format }

func (s *ChunkSource) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *ChunkSource) Closed() bool { return s.closed }

func (s *ChunkSource) NextChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.off >= len(s.data) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, io.EOF
	}

	size := max(s.sizes[s.next%len(s.sizes)], 0)
	s.next++

	end := min(s.off+size, len(s.data))
	chunk := append([]byte(nil), s.data[s.off:end]...)
	s.off = end

	return chunk, nil
}

// Ramp returns n bytes counting 0..250 repeatedly, so any lost or
// duplicated byte breaks the pattern.
func Ramp(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}

	return b
}

// SineS16 renders frames sample instants of a sine tone as interleaved
// 16-bit little-endian PCM, identical on every channel.
func SineS16(sampleRate, channels, frames int, frequency float64) []byte {
	b := make([]byte, frames*channels*2)
	for f := range frames {
		t := float64(f) / float64(sampleRate)
		v := int16(math.Sin(2*math.Pi*frequency*t) * 0.5 * math.MaxInt16)
		for c := range channels {
			binary.LittleEndian.PutUint16(b[(f*channels+c)*2:], uint16(v))
		}
	}

	return b
}

// ConstantS16 renders frames sample instants with every channel set to v.
func ConstantS16(channels, frames int, v int16) []byte {
	b := make([]byte, frames*channels*2)
	for i := 0; i < len(b); i += 2 {
		binary.LittleEndian.PutUint16(b[i:], uint16(v))
	}

	return b
}
