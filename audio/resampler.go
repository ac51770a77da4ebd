// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/audcap/utils"
)

// Resampler converts interleaved float32 audio to another sample rate using
// cubic interpolation. Blocks are pushed with Process; the interpolation
// window carries across blocks so frame boundaries leave no seams.
// Includes basic anti-aliasing filtering when downsampling.
type Resampler struct {
	srcRate  float64
	dstRate  float64
	ratio    float64 // srcRate / dstRate - how many source samples per output sample
	channels int

	// Input frames still needed for interpolation, interleaved.
	hist []float32
	// Read position in source frames, relative to the first frame in hist.
	pos float64

	// Simple low-pass filter state for anti-aliasing (when downsampling)
	filterState []float32
	filterReady bool
	useFilter   bool
	filterAlpha float32
}

func NewResampler(srcRate, dstRate, channels int) *Resampler {
	ratio := float64(srcRate) / float64(dstRate)

	// Enable simple low-pass filter when downsampling
	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		// One-pole low-pass, cutoff roughly at the destination Nyquist
		filterAlpha = 0.5
	}

	return &Resampler{
		srcRate:     float64(srcRate),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }

// Reset drops the interpolation history, e.g. after a discontinuity.
func (r *Resampler) Reset() {
	r.hist = r.hist[:0]
	r.pos = 0
	r.filterReady = false
	clear(r.filterState)
}

// Process pushes in and returns the output samples that can be interpolated so far.
// The last two input frames are held back as lookahead until more input or Flush.
func (r *Resampler) Process(in []float32) ([]float32, error) {
	if len(in)%r.channels != 0 {
		return nil, ErrChannelMismatch
	}

	r.push(in)

	return r.drain(r.frames(), nil), nil
}

// Flush interpolates the held-back tail by repeating the last input frame,
// returns the remaining output and resets the Resampler.
func (r *Resampler) Flush() []float32 {
	defer r.Reset()

	n := r.frames()
	if n == 0 {
		return nil
	}

	last := r.hist[(n-1)*r.channels:]
	for range 2 {
		r.hist = append(r.hist, last[:r.channels]...)
	}

	return r.drain(n, nil)
}

func (r *Resampler) frames() int { return len(r.hist) / r.channels }

func (r *Resampler) push(in []float32) {
	start := len(r.hist)
	r.hist = append(r.hist, in...)

	if !r.useFilter {
		return
	}

	for f := start; f < len(r.hist); f += r.channels {
		frame := r.hist[f : f+r.channels]
		if !r.filterReady {
			// Initialize filter state with first sample to avoid warm-up transients
			copy(r.filterState, frame)
			r.filterReady = true
		}

		for c := range r.channels {
			// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = frame[c]
		}
	}
}

// drain emits every output position below limit that has a full
// four-frame window, then discards history that is no longer reachable.
func (r *Resampler) drain(limit int, out []float32) []float32 {
	n := r.frames()
	ch := r.channels

	for {
		i := int(r.pos)
		if i >= limit || i+2 >= n {
			break
		}

		prev := max(i-1, 0)
		alpha := float32(r.pos - float64(i))

		for c := range ch {
			y0 := r.hist[prev*ch+c]
			y1 := r.hist[i*ch+c]
			y2 := r.hist[(i+1)*ch+c]
			y3 := r.hist[(i+2)*ch+c]
			out = append(out, utils.CatmullRom([4]float32{y0, y1, y2, y3}, alpha))
		}

		r.pos += r.ratio
	}

	// Keep one frame behind the read position for y0.
	drop := min(max(int(r.pos)-1, 0), n)
	if drop > 0 {
		kept := copy(r.hist, r.hist[drop*ch:])
		r.hist = r.hist[:kept]
		r.pos -= float64(drop)
	}

	return out
}
