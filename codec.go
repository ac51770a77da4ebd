// SPDX-License-Identifier: EPL-2.0

package audcap

import (
	"context"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/formats/adts"
)

// Encoder compresses raw frames into access units.
//
// Encode receives exactly FrameSamples sample instants in Format and returns
// zero or more finished units; codecs with a delay return nothing for the
// first frames. A nil frame drains the encoder at end of stream.
type Encoder interface {
	Format() audio.PCMFormat
	FrameSamples() int
	Encode(frame []byte) ([][]byte, error)
}

// Decoder expands access units into raw PCM in Format.
//
// Decode returns zero or more PCM buffers of any length, except that a
// planar buffer must carry complete planes of whole frames. A nil unit drains
// the decoder at end of stream.
type Decoder interface {
	Format() audio.PCMFormat
	Decode(unit []byte) ([][]byte, error)
}

// UnitSource delivers compressed units wrapped in ADTS records. NextUnit
// returns io.EOF at end of stream. adts.Reader and rtpaac.Source implement it.
type UnitSource interface {
	NextUnit(ctx context.Context) (adts.Record, error)
}

// FrameSink consumes raw frames. wav.Writer and aiff.Writer implement it.
type FrameSink interface {
	WriteFrame(frame []byte) error
}

// Observer is notified as data moves through a pipeline.
type Observer interface {
	ChunkRead(bytes int)
	FrameEmitted(bytes int)
	RecordWritten(h adts.Header)
	RecordRead(h adts.Header)
	RecordDropped(err error)
}

type nopObserver struct{}

func (nopObserver) ChunkRead(int)             {}
func (nopObserver) FrameEmitted(int)          {}
func (nopObserver) RecordWritten(adts.Header) {}
func (nopObserver) RecordRead(adts.Header)    {}
func (nopObserver) RecordDropped(error)       {}

// Stats summarizes a pipeline run.
type Stats struct {
	Chunks      int64 // chunks or units read
	InputBytes  int64
	Frames      int64 // raw frames emitted by the reassembler
	Records     int64 // ADTS records written or read
	Dropped     int64 // records skipped
	OutputBytes int64
}
