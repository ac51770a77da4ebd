// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM WAV files.
//
// It builds on github.com/go-audio/wav for RIFF parsing and encoding.
//
// # Reading
//
// Opener implements audio.Opener. The returned source delivers interleaved
// S16 chunks whatever the bit depth of the file:
//
//	f, _ := os.Open("speech.wav")
//	src, err := wav.Opener{ChunkFrames: 480}.Open(f)
//	if err != nil {
//	    // Handle error
//	}
//	chunk, err := src.NextChunk(ctx)
//
// Supported inputs are integer PCM with 8, 16, 24 or 32 bits per sample and
// any channel count or sample rate.
//
// # Writing
//
// Writer stores S16 frames, for instance the output of an audio.Reassembler,
// as a 16-bit PCM file:
//
//	w, err := wav.NewWriter(f, format)
//	err = w.WriteFrame(frame)
//	err = w.Close() // patches the RIFF sizes
//
// # Error Handling
//
// The package defines several error values:
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrUnsupportedWavLayout: the samples are not integer PCM
//   - ErrUnsupportedBitDepth: bit depth other than 8, 16, 24 or 32
//   - ErrUnsupportedWavChunks: required chunks are missing
package wav
