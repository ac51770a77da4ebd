// SPDX-License-Identifier: EPL-2.0

// Package audcap captures raw audio, cuts it into fixed-size frames and moves
// compressed frames in and out of ADTS streams.
//
// The building blocks live in subpackages:
//   - audio: PCM formats, the frame Reassembler and the format Converter
//   - capture: input devices through miniaudio
//   - formats/adts: the 7-byte ADTS record header and stream reader/writer
//   - formats/rtpaac: AAC access units received over RTP
//   - formats/wav, formats/aiff, formats/mp3, formats/vorbis: file sources and sinks
//
// This package joins them into pipelines.
//
// # Encoding
//
// Encode reads a ChunkSource, reassembles its chunks into frames, converts
// them to the encoder format and writes every unit the Encoder returns as an
// ADTS record:
//
//	dev, _ := capture.Open(capture.Config{SampleRate: 48000, Channels: 2, QueueDepth: 64})
//	out, _ := os.Create("capture.aac")
//	stats, err := audcap.Encode(ctx, dev, enc, adts.NewWriter(out), audcap.EncodeConfig{Profile: 1})
//
// No codec ships with this module; Encoder and Decoder are the seams where
// one is plugged in.
//
// # Decoding
//
// Decode reads records from a UnitSource (an adts.Reader over a file or an
// rtpaac.Source over a network session) and writes the decoded PCM to a
// FrameSink in fixed-size frames:
//
//	w, _ := wav.NewWriter(file, format)
//	stats, err := audcap.Decode(ctx, adts.NewReader(in), dec, w, audcap.DecodeConfig{Output: format})
//
// # Recording
//
// Record skips the codec and stores captured PCM directly:
//
//	stats, err := audcap.Record(ctx, dev, w, audcap.RecordConfig{Output: format})
//
// ResampleToMono16 is a shortcut that collects a whole source as mono int16
// samples at a given rate.
//
// # End of stream
//
// Every pipeline drains in order at io.EOF: the partial frame (dropped, or
// zero-padded with PadFinal), the converter tail, then the codec with a nil
// input. Record also treats a canceled context as a normal stop.
package audcap
