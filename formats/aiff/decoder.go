package aiff

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audcap/audio"
)

const defaultChunkFrames = 1024

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.ChunkSource
type source struct {
	dec    aiffReader
	format audio.PCMFormat
	depth  int
	intBuf *goaudio.IntBuffer
	done   bool
}

func (s *source) Format() audio.PCMFormat { return s.format }
func (s *source) Close() error            { return nil }

// NextChunk returns the next block of samples scaled to S16.
func (s *source) NextChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.done {
		return nil, io.EOF
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if errors.Is(err, io.EOF) {
		s.done = true
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("read PCM: %w", err)
	}

	if n == 0 {
		s.done = true
		return nil, io.EOF
	}

	out := make([]byte, 2*n)
	for i, v := range s.intBuf.Data[:n] {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(toInt16(v, s.depth)))
	}

	return out, nil
}

// toInt16 scales a signed sample of the given bit depth to 16 bits.
func toInt16(v, depth int) int16 {
	switch depth {
	case 8:
		return int16(v << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}

// Opener reads AIFF files and delivers S16 chunks.
type Opener struct {
	// ChunkFrames is the number of sample frames per chunk. Zero means 1024.
	ChunkFrames int
}

func (o Opener) Open(r io.Reader) (audio.ChunkSource, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	// Read file info
	dec.ReadInfo()

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, depth)
	}

	f := dec.Format()
	if f == nil || f.NumChannels <= 0 || f.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newSource(dec, f, depth, o.ChunkFrames), nil
}

func newSource(dec aiffReader, f *goaudio.Format, depth, chunkFrames int) *source {
	if chunkFrames <= 0 {
		chunkFrames = defaultChunkFrames
	}

	return &source{
		dec: dec,
		format: audio.PCMFormat{
			SampleRate: f.SampleRate,
			Channels:   f.NumChannels,
			Sample:     audio.S16,
		},
		depth: depth,
		intBuf: &goaudio.IntBuffer{
			Format:         f,
			Data:           make([]int, chunkFrames*f.NumChannels),
			SourceBitDepth: depth,
		},
	}
}
