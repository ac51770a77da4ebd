// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audcap/audio"
)

const (
	formatPCM          = 1
	defaultChunkFrames = 1024
)

type wavSource struct {
	dec    *wav.Decoder
	format audio.PCMFormat
	depth  int
	buf    *goaudio.IntBuffer
}

func (s *wavSource) Format() audio.PCMFormat { return s.format }
func (s *wavSource) Close() error            { return nil }

// NextChunk returns the next block of samples as S16. Chunks hold whole
// samples but may end in the middle of a sample frame.
func (s *wavSource) NextChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read PCM: %w", err)
	}

	if n == 0 {
		return nil, io.EOF
	}

	out := make([]byte, n*2)
	for i, v := range s.buf.Data[:n] {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(toInt16(v, s.depth)))
	}

	return out, nil
}

// toInt16 scales a sample of the given bit depth to 16 bits.
func toInt16(v, depth int) int16 {
	switch depth {
	case 8:
		// 8-bit WAV is unsigned
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}

// Opener reads PCM WAV files of 8, 16, 24 or 32 bits and delivers S16 chunks.
type Opener struct {
	// ChunkFrames is the number of sample frames per chunk. Zero means 1024.
	ChunkFrames int
}

// Open parses the WAV headers and positions the stream at the sample data.
// Inputs that cannot seek are buffered in memory.
func (o Opener) Open(r io.Reader) (audio.ChunkSource, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(data)
	}

	header := make([]byte, 12)
	if _, err := io.ReadFull(rs, header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if !bytes.HasPrefix(header[:4], []byte("RIFF")) || !bytes.HasPrefix(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavChunks
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, depth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	frames := o.ChunkFrames
	if frames <= 0 {
		frames = defaultChunkFrames
	}

	format := audio.PCMFormat{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Sample:     audio.S16,
	}

	return &wavSource{
		dec:    dec,
		format: format,
		depth:  depth,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			Data:           make([]int, frames*format.Channels),
			SourceBitDepth: depth,
		},
	}, nil
}
