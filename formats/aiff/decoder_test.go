// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audcap/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	bitDepth     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := len(buf.Data)
	if samplesToRead > len(m.samples)-m.offset {
		samplesToRead = len(m.samples) - m.offset
	}

	copy(buf.Data, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead, io.EOF
	}

	return samplesToRead, nil
}

func TestOpener_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Opener{}.Open(bytes.NewReader([]byte("This is not AIFF data")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Open() error = %v, want ErrNotAiffFile", err)
	}
}

func TestOpener_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Opener{}.Open(bytes.NewReader([]byte{}))
	if err == nil {
		t.Error("Open() error = nil, want error for empty input")
	}
}

func newMockSource(m *mockAiffReader, chunkFrames int) *source {
	return newSource(m, m.Format(), m.bitDepth, chunkFrames)
}

func drain(t *testing.T, src audio.ChunkSource) []byte {
	t.Helper()

	var out []byte
	for {
		chunk, err := src.NextChunk(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("NextChunk() error = %v", err)
		}
		out = append(out, chunk...)
	}
}

func le16(samples ...int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src := newMockSource(&mockAiffReader{sampleRate: 44100, channels: 2, bitDepth: 16}, 0)

	want := audio.PCMFormat{SampleRate: 44100, Channels: 2, Sample: audio.S16}
	if src.Format() != want {
		t.Errorf("Format() = %v, want %v", src.Format(), want)
	}

	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_NextChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth   int
		samples []int
		want    []byte
	}{
		{8, []int{0, 64, -128, 127}, le16(0, 64<<8, -32768, 127<<8)},
		{16, []int{0, 16384, -16384, 32767, -32768}, le16(0, 16384, -16384, 32767, -32768)},
		{24, []int{0, 0x7FFFFF, -0x800000}, le16(0, 32767, -32768)},
		{32, []int{1 << 16, -1 << 16}, le16(1, -1)},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d bit", tt.depth), func(t *testing.T) {
			t.Parallel()

			src := newMockSource(&mockAiffReader{
				sampleRate: 8000,
				channels:   1,
				bitDepth:   tt.depth,
				samples:    tt.samples,
			}, 2)

			if got := drain(t, src); !bytes.Equal(got, tt.want) {
				t.Errorf("bytes = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestSource_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src := newMockSource(&mockAiffReader{sampleRate: 8000, channels: 1, bitDepth: 16, samples: []int{1, 2}}, 0)

	if _, err := src.NextChunk(context.Background()); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if _, err := src.NextChunk(context.Background()); err != io.EOF {
			t.Errorf("NextChunk() error = %v, want io.EOF", err)
		}
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src := newMockSource(&mockAiffReader{sampleRate: 8000, channels: 1, bitDepth: 16, returnErrors: true}, 0)

	if _, err := src.NextChunk(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("NextChunk() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestWriterOpener_RoundTrip(t *testing.T) {
	t.Parallel()

	format := audio.PCMFormat{SampleRate: 22050, Channels: 2, Sample: audio.S16}
	path := filepath.Join(t.TempDir(), "out.aiff")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWriter(f, format)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	want := le16(100, -100, 200, -200, 32767, -32768)
	if err := w.WriteFrame(want); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if err := w.WriteFrame(want[:3]); !errors.Is(err, audio.ErrPartialFrame) {
		t.Errorf("WriteFrame(partial) error = %v, want ErrPartialFrame", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	src, err := Opener{}.Open(in)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if src.Format() != format {
		t.Errorf("Format() = %v, want %v", src.Format(), format)
	}
	if got := drain(t, src); !bytes.Equal(got, want) {
		t.Errorf("bytes = % X, want % X", got, want)
	}
}

func TestNewWriter_RejectsFloat(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "x.aiff"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = NewWriter(f, audio.PCMFormat{SampleRate: 8000, Channels: 1, Sample: audio.F32})
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("NewWriter() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestErrors_Distinct(t *testing.T) {
	t.Parallel()

	all := []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout}
	for i, a := range all {
		if !errors.Is(fmt.Errorf("wrap: %w", a), a) {
			t.Errorf("wrapped %v does not match itself", a)
		}
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}

func BenchmarkSource_NextChunk(b *testing.B) {
	samples := make([]int, 44100*2)
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		src := newMockSource(&mockAiffReader{sampleRate: 44100, channels: 2, bitDepth: 16, samples: samples}, 0)
		for {
			if _, err := src.NextChunk(ctx); err != nil {
				break
			}
		}
	}
}
