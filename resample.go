// SPDX-License-Identifier: EPL-2.0

package audcap

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ik5/audcap/audio"
)

// pcm16Collector is a FrameSink that keeps S16 frames as samples.
type pcm16Collector struct {
	samples []int16
}

func (c *pcm16Collector) WriteFrame(frame []byte) error {
	for i := 0; i+1 < len(frame); i += 2 {
		c.samples = append(c.samples, int16(binary.LittleEndian.Uint16(frame[i:])))
	}
	return nil
}

// ResampleToMono16 is a convenience function that reads src to the end and
// returns it as mono 16-bit PCM at targetRate.
//
// It runs Record with a converter to S16 mono and keeps the final partial
// frame, so no input is lost. For long or unbounded sources use Record with
// a streaming FrameSink instead.
//
// Example:
//
//	src, _ := wav.Opener{}.Open(file)
//	pcm16, err := audcap.ResampleToMono16(ctx, src, 8000)
//	if err != nil {
//	    return err
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(ctx context.Context, src audio.ChunkSource, targetRate int) ([]int16, error) {
	const frameSamples = 160

	out := &pcm16Collector{samples: make([]int16, 0, targetRate*2)}

	cfg := RecordConfig{
		Output:       audio.PCMFormat{SampleRate: targetRate, Channels: 1, Sample: audio.S16},
		FrameSamples: frameSamples,
		PadFinal:     true,
	}

	in := src.Format()
	stats, err := Record(ctx, src, out, cfg)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	// trim the zero padding added to the last frame
	want := expectedSamples(stats.InputBytes/int64(in.BytesPerFrame()), in.SampleRate, targetRate)
	if want < int64(len(out.samples)) {
		out.samples = out.samples[:want]
	}

	return out.samples, nil
}

// expectedSamples is the output length of converting n samples between rates.
func expectedSamples(n int64, from, to int) int64 {
	if from == to {
		return n
	}
	return (n*int64(to) + int64(from) - 1) / int64(from)
}
