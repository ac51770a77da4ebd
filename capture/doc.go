// SPDX-License-Identifier: EPL-2.0

// Package capture records raw PCM from audio input devices.
//
// It uses github.com/gen2brain/malgo (miniaudio). The audio callback copies
// each buffer into a bounded queue and returns immediately; NextChunk hands the
// chunks out in order. When the reader falls behind, chunks are dropped and
// counted rather than blocking the callback:
//
//	dev, err := capture.Open(capture.Config{SampleRate: 48000, Channels: 2, QueueDepth: 64})
//	if err != nil {
//	    // Handle error
//	}
//	defer dev.Close()
//
//	for {
//	    chunk, err := dev.NextChunk(ctx)
//	    ...
//	}
//
// Chunk lengths follow the backend period and need not be a whole number of
// frames of any particular size; use an audio.Reassembler downstream.
package capture
