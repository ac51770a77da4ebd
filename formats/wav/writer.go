// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audcap/audio"
)

// Writer stores S16 frames as a PCM WAV file. The RIFF sizes are patched on
// Close, which is why the destination must be seekable.
type Writer struct {
	enc    *wav.Encoder
	format audio.PCMFormat
	buf    *goaudio.IntBuffer

	frames int64
}

func NewWriter(w io.WriteSeeker, format audio.PCMFormat) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	if format.Sample != audio.S16 {
		return nil, fmt.Errorf("%w: WAV writer takes s16, got %s", audio.ErrUnsupportedFormat, format.Sample)
	}

	return &Writer{
		enc:    wav.NewEncoder(w, format.SampleRate, 16, format.Channels, formatPCM),
		format: format,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

func (w *Writer) Format() audio.PCMFormat { return w.format }

// WriteFrame appends frame, which must hold whole sample frames.
func (w *Writer) WriteFrame(frame []byte) error {
	if len(frame)%w.format.BytesPerFrame() != 0 {
		return fmt.Errorf("%w: %d bytes", audio.ErrPartialFrame, len(frame))
	}

	n := len(frame) / 2
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]

	for i := range n {
		w.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(frame[2*i:])))
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	w.frames += int64(n / w.format.Channels)

	return nil
}

// Frames is the number of sample frames written.
func (w *Writer) Frames() int64 { return w.frames }

// Close finalizes the headers. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
