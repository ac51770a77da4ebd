// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into raw PCM chunks.
//
// It uses github.com/hajimehoshi/go-mp3, which always produces 16-bit
// little-endian stereo, so chunks are passed through unchanged with the
// format S16, two channels and the sample rate of the stream:
//
//	src, err := mp3.Opener{}.Open(f)
//	if err != nil {
//	    // Handle error
//	}
//	chunk, err := src.NextChunk(ctx)
//
// Chunk sizes follow the decoder and are not aligned to sample frames; feed
// them through an audio.Reassembler to get fixed-size frames.
package mp3
