// SPDX-License-Identifier: EPL-2.0

// Package audio provides the raw PCM building blocks of a capture pipeline.
//
// This package contains:
//   - PCMFormat and SampleFormat to describe raw byte streams
//   - ChunkSource for devices and files that deliver irregular chunks
//   - Reassembler to regroup chunks into fixed-size frames
//   - Converter, Resampler and MixChannels for format conversion
//   - Registry for opener registration by format key
//
// # Reassembling Frames
//
// Capture devices hand out chunks of whatever size suits them, while encoders
// want frames of an exact byte length. A Reassembler bridges the two:
//
//	r, _ := audio.NewReassembler(format.FrameSize(1024))
//	frames, err := r.Feed(chunk)
//	if err != nil {
//	    return err
//	}
//	for frame := range frames {
//	    // len(frame) == r.FrameSize()
//	}
//
// Bytes that do not fill a frame are carried to the next Feed, so the
// concatenation of all frames equals the concatenation of all chunks no matter
// how the input was split. Flush drains the carry at end of stream.
//
// # Format Conversion
//
// A Converter turns frames from the capture format into the encoder format:
//
//	conv, _ := audio.NewConverter(captureFormat, encoderFormat)
//	out, err := conv.Convert(frame)
//	...
//	tail, err := conv.Flush()
//
// Resampling uses cubic interpolation with the interpolation window carried
// across frames. The last two input sample instants are held back until more
// input arrives or Flush is called.
//
// # Sample Representation
//
// Internally samples are float32 in the range [-1.0, 1.0]. On the wire they
// are S16 (interleaved little-endian int16), F32 (interleaved float32) or
// F32Planar (one float32 plane per channel).
//
// # Error Handling
//
// ChunkSource.NextChunk returns io.EOF when the stream is finished. Misuse is
// reported with the sentinel errors in this package, wrapped with context:
//
//	if errors.Is(err, audio.ErrNotConfigured) {
//	    // Feed before Configure
//	}
package audio
