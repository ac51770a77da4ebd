// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audcap/audio"
)

const defaultChunkFrames = 1024

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec    oggReader
	format audio.PCMFormat
	buf    []float32
}

func (s *source) Format() audio.PCMFormat { return s.format }
func (s *source) Close() error            { return nil }

// NextChunk decodes the next block and returns it as interleaved F32 bytes.
// Vorbis decodes to float natively, so no precision is lost here.
func (s *source) NextChunk(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Read returns a count of values, a multiple of the channel count.
		n, err := s.dec.Read(s.buf)
		if n > 0 {
			out := make([]byte, 4*n)
			for i, v := range s.buf[:n] {
				binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
			}
			return out, nil
		}

		if err == io.EOF {
			return nil, io.EOF
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
}

// Opener decodes Ogg Vorbis streams into F32 chunks.
type Opener struct {
	// ChunkFrames is the number of sample frames per chunk. Zero means 1024.
	ChunkFrames int
}

func (o Opener) Open(r io.Reader) (audio.ChunkSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec, o.ChunkFrames), nil
}

func newSource(dec oggReader, chunkFrames int) *source {
	if chunkFrames <= 0 {
		chunkFrames = defaultChunkFrames
	}

	format := audio.PCMFormat{
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
		Sample:     audio.F32,
	}

	return &source{
		dec:    dec,
		format: format,
		buf:    make([]float32, chunkFrames*format.Channels),
	}
}
