// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into raw PCM chunks.
//
// It uses github.com/jfreymuth/oggvorbis. Vorbis decodes to float natively,
// so the source format is F32 with the channel count and sample rate of the
// stream:
//
//	src, err := vorbis.Opener{ChunkFrames: 960}.Open(f)
//	chunk, err := src.NextChunk(ctx)
//
// Use an audio.Converter to get S16 or another rate.
package vorbis
