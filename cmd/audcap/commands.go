// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pion/rtp"

	"github.com/ik5/audcap"
	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/capture"
	"github.com/ik5/audcap/formats/adts"
	"github.com/ik5/audcap/formats/aiff"
	"github.com/ik5/audcap/formats/mp3"
	"github.com/ik5/audcap/formats/rtpaac"
	"github.com/ik5/audcap/formats/vorbis"
	"github.com/ik5/audcap/formats/wav"
)

func newRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Opener{})
	reg.Register("mp3", mp3.Opener{})
	reg.Register("ogg", vorbis.Opener{})
	reg.Register("aiff", aiff.Opener{})
	reg.Register("aif", aiff.Opener{})

	return reg
}

// extension returns the lower-case file extension without the dot.
func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func runDevices(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	devices, err := capture.Devices(ctx)
	if err != nil {
		return err
	}

	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(e.stdout, "%s %s\n", mark, d.Name)
	}

	return nil
}

// frameSink is a FrameSink that must be closed to finish the file.
type frameSink interface {
	audcap.FrameSink
	io.Closer
}

func openSink(path string, f *os.File, format audio.PCMFormat) (frameSink, error) {
	switch extension(path) {
	case "wav":
		return wav.NewWriter(f, format)
	case "aiff", "aif":
		return aiff.NewWriter(f, format)
	default:
		return nil, fmt.Errorf("%w: output must be .wav or .aiff, got %q", errUsage, path)
	}
}

func runRecord(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	input := fs.String("input", "", "Audio file to read instead of a capture device")
	device := fs.String("device", e.cfg.Capture.Device, "Capture device name")
	output := fs.String("o", "", "Output file (.wav or .aiff)")
	duration := fs.Duration("duration", 0, "Stop after this long (device capture only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output == "" {
		return fmt.Errorf("%w: -o is required", errUsage)
	}

	outFormat, err := e.cfg.Output.Format()
	if err != nil {
		return err
	}
	// file sinks store 16-bit PCM
	outFormat.Sample = audio.S16

	src, err := openSource(e, *input, *device)
	if err != nil {
		return err
	}
	defer src.Close()

	if dev, ok := src.(*capture.Device); ok {
		if err := e.metrics.RegisterOverruns(dev.Overruns); err != nil {
			e.logger.Warn("overrun metric not registered", slog.String("error", err.Error()))
		}

		if *duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *duration)
			defer cancel()
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *output, err)
	}
	defer f.Close()

	sink, err := openSink(*output, f, outFormat)
	if err != nil {
		return err
	}

	stats, err := audcap.Record(ctx, src, sink, audcap.RecordConfig{
		Output:       outFormat,
		FrameSamples: e.cfg.Frame.Samples,
		PadFinal:     e.cfg.Frame.PadFinal,
		Logger:       e.logger,
		Observer:     e.metrics,
	})
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	e.logger.Info("recording written",
		slog.String("path", *output),
		slog.String("format", outFormat.String()),
		slog.Int64("frames", stats.Frames),
		slog.Int64("bytes", stats.OutputBytes),
	)

	return nil
}

func openSource(e *env, input, device string) (audio.ChunkSource, error) {
	if input == "" {
		return capture.Open(capture.Config{
			Device:      device,
			SampleRate:  e.cfg.Capture.SampleRate,
			Channels:    e.cfg.Capture.Channels,
			ChunkFrames: e.cfg.Capture.ChunkFrames,
			QueueDepth:  e.cfg.Capture.QueueDepth,
			Logger:      e.logger,
		})
	}

	opener, ok := newRegistry().Get(extension(input))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported input format %q", errUsage, extension(input))
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}

	src, err := opener.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", input, err)
	}

	return &fileSource{ChunkSource: src, f: f}, nil
}

// fileSource closes the file together with the decoder.
type fileSource struct {
	audio.ChunkSource
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.ChunkSource.Close(), s.f.Close())
}

func runProbe(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	resync := fs.Bool("resync", false, "Skip damaged bytes and continue at the next sync word")
	quiet := fs.Bool("q", false, "Print the summary only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: probe takes one ADTS file", errUsage)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	return probe(e.stdout, data, *resync, *quiet)
}

// probe lists the records in data, one line each, followed by a summary.
func probe(w io.Writer, data []byte, resync, quiet bool) error {
	var (
		records  int
		payload  int
		skipped  int
		duration time.Duration
	)

	for off := 0; off < len(data); {
		h, p, err := adts.Parse(data[off:])
		if err != nil {
			if !resync {
				return fmt.Errorf("offset %d: %w", off, err)
			}

			next := adts.FindSync(data[off+1:])
			if next < 0 {
				skipped += len(data) - off
				break
			}
			skipped += next + 1
			off += next + 1
			continue
		}

		if !quiet {
			fmt.Fprintf(w, "%8d  %s  %v\n", off, h, h.Duration())
		}

		records++
		payload += len(p)
		duration += h.Duration()
		off += h.RecordLength()
	}

	fmt.Fprintf(w, "records: %d, payload: %d bytes, skipped: %d bytes, duration: %v\n",
		records, payload, skipped, duration)

	return nil
}

func rtpConfig(e *env) rtpaac.Config {
	return rtpaac.Config{
		PayloadType: uint8(e.cfg.RTP.PayloadType),
		Profile:     e.cfg.ADTS.Profile,
		SampleRate:  e.cfg.RTP.SampleRate,
		Channels:    e.cfg.RTP.Channels,
		Logger:      e.logger,
	}
}

func runRTPToADTS(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("rtp2adts", flag.ContinueOnError)
	listen := fs.String("listen", e.cfg.RTP.Listen, "UDP address to receive RTP on")
	output := fs.String("o", "", "Output ADTS file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output == "" {
		return fmt.Errorf("%w: -o is required", errUsage)
	}

	conn, err := net.ListenPacket("udp", *listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *listen, err)
	}
	defer conn.Close()

	src, err := rtpaac.NewSource(rtpaac.NewConnReader(conn), rtpConfig(e))
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *output, err)
	}
	defer f.Close()

	e.logger.Info("receiving RTP", slog.String("address", conn.LocalAddr().String()))

	w := adts.NewWriter(f)
	err = relay(ctx, src, w, e.metrics)

	e.logger.Info("RTP session ended",
		slog.Int("packets", src.Packets()),
		slog.Int("lost", src.Lost()),
		slog.Int("malformed", src.Malformed()),
		slog.Int("oversize", src.Oversize()),
		slog.Int("records", w.Records()),
	)

	return err
}

// relay copies records from src to w until src ends or ctx is canceled.
func relay(ctx context.Context, src audcap.UnitSource, w *adts.Writer, obs audcap.Observer) error {
	for {
		rec, err := src.NextUnit(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}

		obs.RecordRead(rec.Header)

		if err := w.WriteRecord(rec.Header, rec.Payload); err != nil {
			if errors.Is(err, adts.ErrPayloadTooLarge) {
				obs.RecordDropped(err)
				continue
			}
			return err
		}

		obs.RecordWritten(rec.Header)
	}
}

func runADTSToRTP(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("adts2rtp", flag.ContinueOnError)
	dest := fs.String("dest", "127.0.0.1:5004", "UDP destination")
	mtu := fs.Uint("mtu", 1200, "Maximum RTP packet size")
	realtime := fs.Bool("realtime", true, "Pace packets at the stream rate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: adts2rtp takes one ADTS file", errUsage)
	}

	packetSize, err := checkMTU(*mtu)
	if err != nil {
		return err
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	conn, err := net.Dial("udp", *dest)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", *dest, err)
	}
	defer conn.Close()

	sent, err := send(ctx, adts.NewReader(in), conn, e.cfg.RTP.PayloadType, packetSize, *realtime)
	e.logger.Info("ADTS file sent", slog.String("destination", *dest), slog.Int("packets", sent))

	return err
}

// rtpHeaderSize is the fixed RTP header without CSRCs or extensions.
const rtpHeaderSize = 12

// checkMTU accepts packet sizes that fit in 16 bits and leave room for the
// RTP header, the AU headers section and at least one payload byte.
func checkMTU(mtu uint) (uint16, error) {
	if mtu > math.MaxUint16 || mtu <= rtpHeaderSize+4 {
		return 0, fmt.Errorf("%w: -mtu %d out of range %d-%d", errUsage, mtu, rtpHeaderSize+5, math.MaxUint16)
	}
	return uint16(mtu), nil
}

// send packetizes every record of r and writes the packets to w. The stream
// parameters of the first record fix the RTP clock rate; a record that
// differs ends the transfer.
func send(ctx context.Context, r *adts.Reader, w io.Writer, payloadType int, mtu uint16, realtime bool) (int, error) {
	var (
		sent       int
		first      adts.Header
		packetizer rtp.Packetizer
		start      = time.Now()
		ahead      time.Duration
	)

	for {
		rec, err := r.NextUnit(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return sent, nil
		}
		if err != nil {
			return sent, err
		}

		h := rec.Header
		if packetizer == nil {
			first = h
			packetizer = rtpaac.NewPacketizer(rtpaac.Config{
				PayloadType: uint8(payloadType),
				Profile:     h.Profile,
				SampleRate:  h.SampleRate,
				Channels:    h.Channels,
			}, mtu, rand.Uint32())
		} else if h.Profile != first.Profile || h.SampleRate != first.SampleRate || h.Channels != first.Channels {
			return sent, fmt.Errorf("%w: %s after %s", errStreamChanged, h, first)
		}

		for _, pkt := range packetizer.Packetize(rec.Payload, adts.SamplesPerRecord) {
			raw, err := pkt.Marshal()
			if err != nil {
				return sent, fmt.Errorf("marshal packet: %w", err)
			}

			if _, err := w.Write(raw); err != nil {
				return sent, fmt.Errorf("send packet: %w", err)
			}
			sent++
		}

		if realtime {
			ahead += h.Duration()
			if wait := ahead - time.Since(start); wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return sent, nil
				}
			}
		}
	}
}

var errStreamChanged = errors.New("stream parameters changed mid-file")
