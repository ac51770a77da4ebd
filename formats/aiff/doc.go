// SPDX-License-Identifier: EPL-2.0

// Package aiff reads and writes AIFF (Audio Interchange File Format) files.
//
// This package uses github.com/go-audio/aiff. AIFF is Apple's standard
// audio file format, commonly used on macOS.
//
// # Reading
//
// Opener delivers S16 chunks for 8, 16, 24 and 32-bit files with any channel
// count and sample rate:
//
//	src, err := aiff.Opener{}.Open(f)
//	chunk, err := src.NextChunk(ctx)
//
// # Writing
//
// Writer stores S16 frames as a 16-bit AIFF file:
//
//	w, err := aiff.NewWriter(f, format)
//	err = w.WriteFrame(frame)
//	err = w.Close()
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: bit depth other than 8, 16, 24 or 32
//   - ErrUnsupportedAiffLayout: missing or invalid COMM chunk
package aiff
