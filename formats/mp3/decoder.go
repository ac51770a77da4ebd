// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"context"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audcap/audio"
)

const defaultChunkBytes = 8192

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    mp3Reader
	format audio.PCMFormat
	buf    []byte
}

func (s *source) Format() audio.PCMFormat { return s.format }
func (s *source) Close() error            { return nil }

// NextChunk returns whatever the decoder produced on one Read. go-mp3 already
// emits 16-bit little-endian stereo, so the bytes are passed through.
func (s *source) NextChunk(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := s.dec.Read(s.buf)
		if n > 0 {
			// A read error is reported again by the next call.
			return append([]byte(nil), s.buf[:n]...), nil
		}

		if err == io.EOF {
			return nil, io.EOF
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
}

// Opener decodes MP3 streams into S16 stereo chunks.
type Opener struct {
	// ChunkBytes caps the size of one chunk. Zero means 8192.
	ChunkBytes int
}

func (o Opener) Open(r io.Reader) (audio.ChunkSource, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec, o.ChunkBytes), nil
}

func newSource(dec mp3Reader, chunkBytes int) *source {
	if chunkBytes <= 0 {
		chunkBytes = defaultChunkBytes
	}

	// go-mp3 always outputs stereo
	return &source{
		dec: dec,
		format: audio.PCMFormat{
			SampleRate: dec.SampleRate(),
			Channels:   2,
			Sample:     audio.S16,
		},
		buf: make([]byte, chunkBytes),
	}
}
