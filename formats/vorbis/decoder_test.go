// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audcap/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32
	offset       int
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int {
	return m.sampleRate
}

func (m *mockOggVorbisReader) Channels() int {
	return m.channels
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	// Whole frames only; the count returned is in values
	framesRequested := len(buf) / m.channels
	samplesAvailable := len(m.samples) - m.offset
	framesAvailable := samplesAvailable / m.channels

	framesToRead := framesRequested
	if framesToRead > framesAvailable {
		framesToRead = framesAvailable
	}

	samplesToRead := framesToRead * m.channels
	copy(buf, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead, io.EOF
	}

	return samplesToRead, nil
}

func TestOpener_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Opener{}.Open(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	if err == nil {
		t.Error("Open() error = nil, want error for invalid data")
	}
}

func TestOpener_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Opener{}.Open(bytes.NewReader(nil))
	if err == nil {
		t.Error("Open() error = nil, want error for empty input")
	}
}

func TestSource_Format(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2}, 0)

	want := audio.PCMFormat{SampleRate: 48000, Channels: 2, Sample: audio.F32}
	if src.Format() != want {
		t.Errorf("Format() = %v, want %v", src.Format(), want)
	}

	if len(src.buf) != defaultChunkFrames*2 {
		t.Errorf("buffer = %d values, want %d", len(src.buf), defaultChunkFrames*2)
	}
}

func TestSource_NextChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []float32
	}{
		{"mono", 1, []float32{0.1, -0.2, 0.3, -0.4, 0.5}},
		{"stereo", 2, []float32{0.1, 0.2, -0.3, -0.4, 0.5, 0.6}},
		{"5.1", 6, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, -0.1, -0.2, -0.3, -0.4, -0.5, -0.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(&mockOggVorbisReader{sampleRate: 44100, channels: tt.channels, samples: tt.samples}, 1)

			var got []byte
			for {
				chunk, err := src.NextChunk(context.Background())
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("NextChunk() error = %v", err)
				}
				if len(chunk) != 4*tt.channels {
					t.Errorf("chunk = %d bytes, want one frame of %d", len(chunk), 4*tt.channels)
				}
				got = append(got, chunk...)
			}

			samples, err := audio.DecodeSamples(nil, src.Format(), got)
			if err != nil {
				t.Fatal(err)
			}
			if len(samples) != len(tt.samples) {
				t.Fatalf("got %d samples, want %d", len(samples), len(tt.samples))
			}
			for i := range samples {
				if samples[i] != tt.samples[i] {
					t.Errorf("sample[%d] = %v, want %v", i, samples[i], tt.samples[i])
				}
			}
		})
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 8000, channels: 1, returnErrors: true}, 0)

	if _, err := src.NextChunk(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("NextChunk() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSource_Canceled(t *testing.T) {
	t.Parallel()

	src := newSource(&mockOggVorbisReader{sampleRate: 8000, channels: 1, samples: []float32{1}}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.NextChunk(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("NextChunk() error = %v, want context.Canceled", err)
	}
}

func BenchmarkSource_NextChunk(b *testing.B) {
	samples := make([]float32, 48000*2)
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		src := newSource(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: samples}, 0)
		for {
			if _, err := src.NextChunk(ctx); err != nil {
				break
			}
		}
	}
}
