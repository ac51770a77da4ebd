// SPDX-License-Identifier: EPL-2.0

package audcap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/formats/adts"
)

// EncodeConfig configures Encode.
type EncodeConfig struct {
	// Profile is written into every ADTS header.
	Profile int
	// FrameSamples is the number of sample instants the source side is cut
	// into before conversion. Zero uses the encoder frame size.
	FrameSamples int
	// PadFinal zero-pads the last partial frame instead of dropping it.
	PadFinal bool

	Logger   *slog.Logger
	Observer Observer
}

// DecodeConfig configures Decode.
type DecodeConfig struct {
	// Output is the format delivered to the sink. The zero value keeps the
	// decoder format.
	Output       audio.PCMFormat
	FrameSamples int
	PadFinal     bool

	Logger   *slog.Logger
	Observer Observer
}

// RecordConfig configures Record.
type RecordConfig struct {
	Output       audio.PCMFormat
	FrameSamples int
	PadFinal     bool

	Logger   *slog.Logger
	Observer Observer
}

// stage couples a reassembler with a converter: bytes in one format go in,
// fixed frames in another format come out. Reassembly and conversion run on
// interleaved samples; planar input is interleaved one buffer at a time and
// planar output is produced one whole frame at a time.
type stage struct {
	src  audio.PCMFormat
	dst  audio.PCMFormat
	in   *audio.Reassembler
	conv *audio.Converter
	out  *audio.Reassembler
	pad  bool

	obs   Observer
	stats *Stats
}

func newStage(src, dst audio.PCMFormat, inSamples, outSamples int, pad bool, obs Observer, stats *Stats) (*stage, error) {
	conv, err := audio.NewConverter(src.Interleaved(), dst.Interleaved())
	if err != nil {
		return nil, err
	}

	in, err := audio.NewReassembler(src.FrameSize(inSamples))
	if err != nil {
		return nil, fmt.Errorf("input frames: %w", err)
	}

	out, err := audio.NewReassembler(dst.FrameSize(outSamples))
	if err != nil {
		return nil, fmt.Errorf("output frames: %w", err)
	}

	return &stage{src: src, dst: dst, in: in, conv: conv, out: out, pad: pad, obs: obs, stats: stats}, nil
}

// push feeds chunk through the stage and hands complete output frames to emit.
// A planar chunk must hold whole sample frames.
func (s *stage) push(chunk []byte, emit func([]byte) error) error {
	chunk, err := audio.Interleave(s.src, chunk)
	if err != nil {
		return fmt.Errorf("planar input: %w", err)
	}

	frames, err := s.in.Feed(chunk)
	if err != nil {
		return err
	}

	for frame := range frames {
		if err := s.convert(frame, emit); err != nil {
			return err
		}
	}

	return nil
}

func (s *stage) convert(frame []byte, emit func([]byte) error) error {
	s.stats.Frames++
	s.obs.FrameEmitted(len(frame))

	converted, err := s.conv.Convert(frame)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	return s.emitConverted(converted, emit)
}

func (s *stage) emitConverted(b []byte, emit func([]byte) error) error {
	out, err := s.out.Feed(b)
	if err != nil {
		return err
	}

	for frame := range out {
		if err := s.emitFrame(frame, emit); err != nil {
			return err
		}
	}

	return nil
}

func (s *stage) emitFrame(frame []byte, emit func([]byte) error) error {
	frame, err := audio.Deinterleave(s.dst, frame)
	if err != nil {
		return fmt.Errorf("planar output: %w", err)
	}
	return emit(frame)
}

// drain flushes the input carry, the converter tail and the output carry.
func (s *stage) drain(emit func([]byte) error) error {
	for frame := range s.in.Flush(s.pad) {
		if err := s.convert(frame, emit); err != nil {
			return err
		}
	}

	tail, err := s.conv.Flush()
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	if err := s.emitConverted(tail, emit); err != nil {
		return err
	}

	for frame := range s.out.Flush(s.pad) {
		if err := s.emitFrame(frame, emit); err != nil {
			return err
		}
	}

	return nil
}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Encode reads src until io.EOF, cuts it into frames, converts them to the
// encoder format and writes every unit the encoder returns as an ADTS record.
// At end of stream the partial frame, the converter and the encoder are
// drained in that order.
//
// Units too large for one record are logged and skipped.
func Encode(ctx context.Context, src audio.ChunkSource, enc Encoder, w *adts.Writer, cfg EncodeConfig) (Stats, error) {
	var stats Stats

	obs := observerOrNop(cfg.Observer)
	logger := loggerOrDefault(cfg.Logger).With("pipeline", "encode")

	encFormat := enc.Format()
	header := adts.Header{Profile: cfg.Profile, SampleRate: encFormat.SampleRate, Channels: encFormat.Channels}
	if err := header.Validate(); err != nil {
		return stats, fmt.Errorf("encoder format: %w", err)
	}

	inSamples := cfg.FrameSamples
	if inSamples == 0 {
		inSamples = enc.FrameSamples()
	}

	st, err := newStage(src.Format(), encFormat, inSamples, enc.FrameSamples(), cfg.PadFinal, obs, &stats)
	if err != nil {
		return stats, err
	}

	writeUnits := func(units [][]byte) error {
		for _, unit := range units {
			err := w.WriteRecord(header, unit)
			if errors.Is(err, adts.ErrPayloadTooLarge) {
				stats.Dropped++
				obs.RecordDropped(err)
				logger.Warn("skipping encoded unit", "size", len(unit), "error", err)
				continue
			}
			if err != nil {
				return err
			}

			stats.Records++
			stats.OutputBytes += int64(len(unit) + adts.HeaderSize)
			obs.RecordWritten(adts.Header{
				Profile:       header.Profile,
				SampleRate:    header.SampleRate,
				Channels:      header.Channels,
				PayloadLength: len(unit),
			})
		}
		return nil
	}

	encode := func(frame []byte) error {
		units, err := enc.Encode(frame)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return writeUnits(units)
	}

	logger.Debug("encode started", "input", src.Format().String(), "encoder", encFormat.String())

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		chunk, err := src.NextChunk(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read chunk: %w", err)
		}

		stats.Chunks++
		stats.InputBytes += int64(len(chunk))
		obs.ChunkRead(len(chunk))

		if err := st.push(chunk, encode); err != nil {
			return stats, err
		}
	}

	if err := st.drain(encode); err != nil {
		return stats, err
	}

	if err := encode(nil); err != nil {
		return stats, err
	}

	logger.Info("encode finished", "frames", stats.Frames, "records", stats.Records, "dropped", stats.Dropped)

	return stats, nil
}

// Decode reads records from units until io.EOF, decodes their payloads and
// writes the PCM to sink in frames of FrameSamples in the output format.
func Decode(ctx context.Context, units UnitSource, dec Decoder, sink FrameSink, cfg DecodeConfig) (Stats, error) {
	var stats Stats

	obs := observerOrNop(cfg.Observer)
	logger := loggerOrDefault(cfg.Logger).With("pipeline", "decode")

	decFormat := dec.Format()
	output := cfg.Output
	if output == (audio.PCMFormat{}) {
		output = decFormat
	}

	samples := cfg.FrameSamples
	if samples == 0 {
		samples = adts.SamplesPerRecord
	}

	st, err := newStage(decFormat, output, samples, samples, cfg.PadFinal, obs, &stats)
	if err != nil {
		return stats, err
	}

	write := func(frame []byte) error {
		if err := sink.WriteFrame(frame); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		stats.OutputBytes += int64(len(frame))
		return nil
	}

	push := func(pcm [][]byte) error {
		for _, b := range pcm {
			if err := st.push(b, write); err != nil {
				return err
			}
		}
		return nil
	}

	mismatch := false

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec, err := units.NextUnit(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			obs.RecordDropped(err)
			return stats, fmt.Errorf("read unit: %w", err)
		}

		stats.Chunks++
		stats.Records++
		stats.InputBytes += int64(rec.Header.RecordLength())
		obs.RecordRead(rec.Header)

		if !mismatch && (rec.Header.SampleRate != decFormat.SampleRate || rec.Header.Channels != decFormat.Channels) {
			mismatch = true
			logger.Warn("stream parameters differ from decoder format",
				"stream", rec.Header.String(), "decoder", decFormat.String())
		}

		pcm, err := dec.Decode(rec.Payload)
		if err != nil {
			return stats, fmt.Errorf("decode record %d: %w", stats.Records, err)
		}

		if err := push(pcm); err != nil {
			return stats, err
		}
	}

	pcm, err := dec.Decode(nil)
	if err != nil {
		return stats, fmt.Errorf("decode: %w", err)
	}

	if err := push(pcm); err != nil {
		return stats, err
	}

	if err := st.drain(write); err != nil {
		return stats, err
	}

	logger.Info("decode finished", "records", stats.Records, "frames", stats.Frames)

	return stats, nil
}

// Record copies src to sink without a codec: chunks are cut into frames,
// converted to the output format and written frame by frame.
func Record(ctx context.Context, src audio.ChunkSource, sink FrameSink, cfg RecordConfig) (Stats, error) {
	var stats Stats

	obs := observerOrNop(cfg.Observer)
	logger := loggerOrDefault(cfg.Logger).With("pipeline", "record")

	output := cfg.Output
	if output == (audio.PCMFormat{}) {
		output = src.Format()
	}

	samples := cfg.FrameSamples
	if samples == 0 {
		samples = adts.SamplesPerRecord
	}

	st, err := newStage(src.Format(), output, samples, samples, cfg.PadFinal, obs, &stats)
	if err != nil {
		return stats, err
	}

	write := func(frame []byte) error {
		if err := sink.WriteFrame(frame); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		stats.OutputBytes += int64(len(frame))
		return nil
	}

	for {
		chunk, err := src.NextChunk(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// stop requested: keep what was captured
			logger.Debug("record interrupted")
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read chunk: %w", err)
		}

		stats.Chunks++
		stats.InputBytes += int64(len(chunk))
		obs.ChunkRead(len(chunk))

		if err := st.push(chunk, write); err != nil {
			return stats, err
		}
	}

	if err := st.drain(write); err != nil {
		return stats, err
	}

	logger.Info("record finished", "frames", stats.Frames, "bytes", stats.OutputBytes)

	return stats, nil
}
