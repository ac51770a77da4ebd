// SPDX-License-Identifier: EPL-2.0

package audcap_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ik5/audcap"
	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/formats/adts"
	"github.com/ik5/audcap/internal/audiotest"
)

// passEncoder stands in for a real codec and returns every frame as a unit.
type passEncoder struct{ format audio.PCMFormat }

func (e passEncoder) Format() audio.PCMFormat { return e.format }
func (e passEncoder) FrameSamples() int       { return adts.SamplesPerRecord }

func (e passEncoder) Encode(frame []byte) ([][]byte, error) {
	if frame == nil {
		return nil, nil
	}
	return [][]byte{frame[:64]}, nil
}

// Example_encode captures irregular chunks and writes one ADTS record per
// encoded frame.
func Example_encode() {
	capture := audio.PCMFormat{SampleRate: 48000, Channels: 2, Sample: audio.S16}
	encoder := audio.PCMFormat{SampleRate: 44100, Channels: 2, Sample: audio.S16}

	src := audiotest.NewChunkSource(capture, audiotest.SineS16(48000, 2, 48000, 440), 3840, 1000)

	var out bytes.Buffer
	stats, err := audcap.Encode(context.Background(), src, passEncoder{format: encoder}, adts.NewWriter(&out),
		audcap.EncodeConfig{Profile: 1})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("records: %d, first header: % X\n", stats.Records, out.Bytes()[:adts.HeaderSize])
	// Output:
	// records: 42, first header: FF F1 50 80 08 FF FC
}

// Example_resampleToMono16 converts a stereo source into mono 8kHz samples.
func Example_resampleToMono16() {
	format := audio.PCMFormat{SampleRate: 16000, Channels: 2, Sample: audio.S16}
	src := audiotest.NewChunkSource(format, audiotest.ConstantS16(2, 1600, 1000), 512)

	pcm16, err := audcap.ResampleToMono16(context.Background(), src, 8000)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d samples\n", len(pcm16))
	// Output:
	// 800 samples
}
