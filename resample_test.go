// SPDX-License-Identifier: EPL-2.0

package audcap

import (
	"errors"
	"testing"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/internal/audiotest"
)

func TestResampleToMono16_Basic(t *testing.T) {
	t.Parallel()

	// 1 second of stereo audio at 44.1kHz
	format := audio.PCMFormat{SampleRate: 44100, Channels: 2, Sample: audio.S16}
	src := audiotest.NewChunkSource(format, audiotest.SineS16(44100, 2, 44100, 440), 4410)

	pcm16, err := ResampleToMono16(t.Context(), src, 8000)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}

	expected := 8000
	tolerance := 2
	if len(pcm16) < expected-tolerance || len(pcm16) > expected+tolerance {
		t.Errorf("ResampleToMono16() got %d samples, want ≈%d (±%d)", len(pcm16), expected, tolerance)
	}
}

func TestResampleToMono16_AlreadyMono(t *testing.T) {
	t.Parallel()

	format := audio.PCMFormat{SampleRate: 8000, Channels: 1, Sample: audio.S16}
	data := audiotest.ConstantS16(1, 1000, 1234)
	src := audiotest.NewChunkSource(format, data, 300)

	pcm16, err := ResampleToMono16(t.Context(), src, 8000)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}

	if len(pcm16) != 1000 {
		t.Fatalf("ResampleToMono16() got %d samples, want 1000", len(pcm16))
	}
	for i, s := range pcm16 {
		if s != 1234 {
			t.Fatalf("pcm16[%d] = %d, want 1234", i, s)
		}
	}
}

func TestResampleToMono16_Silence(t *testing.T) {
	t.Parallel()

	format := audio.PCMFormat{SampleRate: 16000, Channels: 2, Sample: audio.S16}
	src := audiotest.NewChunkSource(format, audiotest.ConstantS16(2, 16000, 0), 999)

	pcm16, err := ResampleToMono16(t.Context(), src, 8000)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}

	for i, s := range pcm16 {
		if s != 0 {
			t.Errorf("pcm16[%d] = %d, want 0 for silence", i, s)
		}
	}
}

func TestResampleToMono16_EmptySource(t *testing.T) {
	t.Parallel()

	format := audio.PCMFormat{SampleRate: 44100, Channels: 2, Sample: audio.S16}
	pcm16, err := ResampleToMono16(t.Context(), audiotest.NewChunkSource(format, nil), 8000)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}

	if len(pcm16) != 0 {
		t.Errorf("ResampleToMono16() got %d samples, want 0", len(pcm16))
	}
}

func TestResampleToMono16_VariousRates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		srcRate    int
		targetRate int
	}{
		{"48k to 8k", 48000, 8000},
		{"44.1k to 16k", 44100, 16000},
		{"8k to 16k", 8000, 16000},
		{"22.05k to 44.1k", 22050, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format := audio.PCMFormat{SampleRate: tt.srcRate, Channels: 2, Sample: audio.S16}
			src := audiotest.NewChunkSource(format, audiotest.SineS16(tt.srcRate, 2, tt.srcRate/2, 300), 1000)

			pcm16, err := ResampleToMono16(t.Context(), src, tt.targetRate)
			if err != nil {
				t.Fatalf("ResampleToMono16() error = %v", err)
			}

			expected := tt.targetRate / 2
			if len(pcm16) < expected-3 || len(pcm16) > expected+3 {
				t.Errorf("got %d samples, want ≈%d", len(pcm16), expected)
			}
		})
	}
}

func TestResampleToMono16_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("read failed")
	format := audio.PCMFormat{SampleRate: 8000, Channels: 1, Sample: audio.S16}
	src := audiotest.NewChunkSource(format, make([]byte, 10))
	src.Err = boom

	if _, err := ResampleToMono16(t.Context(), src, 8000); !errors.Is(err, boom) {
		t.Errorf("ResampleToMono16() error = %v, want %v", err, boom)
	}
}

func BenchmarkResampleToMono16(b *testing.B) {
	format := audio.PCMFormat{SampleRate: 44100, Channels: 2, Sample: audio.S16}
	data := audiotest.SineS16(44100, 2, 44100, 440)

	b.ReportAllocs()

	for b.Loop() {
		_, _ = ResampleToMono16(b.Context(), audiotest.NewChunkSource(format, data, 4096), 8000)
	}
}
