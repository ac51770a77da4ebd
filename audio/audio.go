// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// SampleFormat is the in-memory layout of PCM samples.
type SampleFormat int

const (
	// S16 is interleaved signed 16-bit little-endian PCM.
	S16 SampleFormat = iota
	// F32 is interleaved 32-bit little-endian IEEE float PCM in [-1, 1].
	F32
	// F32Planar stores one contiguous float32 plane per channel.
	F32Planar
)

func (f SampleFormat) String() string {
	switch f {
	case S16:
		return "s16"
	case F32:
		return "f32"
	case F32Planar:
		return "f32p"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// BytesPerSample is the size of one sample of one channel.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case S16:
		return 2
	case F32, F32Planar:
		return 4
	default:
		return 0
	}
}

// Planar reports whether each channel is stored in its own plane.
func (f SampleFormat) Planar() bool {
	return f == F32Planar
}

// ParseSampleFormat maps the names returned by String back to a SampleFormat.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch s {
	case "s16":
		return S16, nil
	case "f32":
		return F32, nil
	case "f32p", "fltp":
		return F32Planar, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// PCMFormat describes a raw PCM stream.
type PCMFormat struct {
	SampleRate int
	Channels   int
	Sample     SampleFormat
}

// Validate reports whether the format can be carried by this package.
func (p PCMFormat) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, p.SampleRate)
	}

	if p.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, p.Channels)
	}

	if p.Sample.BytesPerSample() == 0 {
		return fmt.Errorf("%w: sample format %s", ErrUnsupportedFormat, p.Sample)
	}

	return nil
}

// BytesPerFrame is the number of bytes one sample instant occupies across all channels.
func (p PCMFormat) BytesPerFrame() int {
	return p.Channels * p.Sample.BytesPerSample()
}

// FrameSize returns the byte length of a buffer holding samples sample instants.
// A stereo S16 stream with 1024 samples per frame needs 4096 bytes.
func (p PCMFormat) FrameSize(samples int) int {
	return samples * p.BytesPerFrame()
}

// Interleaved returns p with a planar layout replaced by the interleaved
// layout of the same sample type. Frame boundaries can only be cut at byte
// offsets in an interleaved layout.
func (p PCMFormat) Interleaved() PCMFormat {
	if p.Sample == F32Planar {
		p.Sample = F32
	}
	return p
}

func (p PCMFormat) String() string {
	return fmt.Sprintf("%dHz/%dch/%s", p.SampleRate, p.Channels, p.Sample)
}

// ChunkSource delivers raw PCM bytes in chunks of whatever size the
// underlying device or file produces.
type ChunkSource interface {
	// Format of the bytes returned by NextChunk.
	Format() PCMFormat
	// NextChunk blocks until a chunk is available. It returns io.EOF once
	// the stream is finished. A chunk may be shorter than a sample frame,
	// except in a planar format, where every chunk holds whole frames.
	NextChunk(ctx context.Context) ([]byte, error)
	// Close releases any resources.
	Close() error
}

// Opener constructs a ChunkSource from an encoded input.
type Opener interface {
	Open(r io.Reader) (ChunkSource, error)
}

// Registry for openers by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	openers map[string]Opener

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, o Opener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.openers[format] = o
}

func (r *Registry) Get(format string) (Opener, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	o, ok := r.openers[format]
	return o, ok
}
