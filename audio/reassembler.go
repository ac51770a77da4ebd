// SPDX-License-Identifier: EPL-2.0

package audio

import "iter"

// Frame is a fixed-length block of raw audio bytes produced by a Reassembler.
// Every Frame is freshly allocated; the caller owns it.
type Frame []byte

// Reassembler turns variable-length chunks into frames of exactly FrameSize bytes.
// Bytes that do not yet fill a frame are carried over to the next Feed.
//
// The zero value must be configured before use. A Reassembler is not safe
// for concurrent use; keep one per stream.
type Reassembler struct {
	frameSize int

	// carry[off:] holds the bytes not emitted yet.
	carry []byte
	off   int
}

// NewReassembler returns a Reassembler configured for frameSize bytes.
func NewReassembler(frameSize int) (*Reassembler, error) {
	r := &Reassembler{}
	if err := r.Configure(frameSize); err != nil {
		return nil, err
	}

	return r, nil
}

// Configure fixes the frame length. Any carried bytes are discarded.
func (r *Reassembler) Configure(frameSize int) error {
	if frameSize <= 0 {
		return ErrInvalidFrameSize
	}

	r.frameSize = frameSize
	r.carry = make([]byte, 0, frameSize)
	r.off = 0

	return nil
}

// FrameSize returns the configured frame length, or 0 when unconfigured.
func (r *Reassembler) FrameSize() int { return r.frameSize }

// Buffered is the number of bytes waiting to complete a frame.
func (r *Reassembler) Buffered() int { return len(r.carry) - r.off }

// Pending returns a copy of the carried bytes.
func (r *Reassembler) Pending() []byte {
	return append([]byte(nil), r.carry[r.off:]...)
}

// Reset discards carried bytes, e.g. when switching sources or after a discontinuity.
func (r *Reassembler) Reset() {
	r.carry = r.carry[:0]
	r.off = 0
}

// Feed appends chunk to the carried bytes and returns the frames that are now complete.
//
// The chunk is copied before Feed returns, so the caller may reuse it. Frames are
// cut lazily while the sequence is ranged over; if the caller stops early the
// remaining frames stay buffered and come out of the next sequence.
func (r *Reassembler) Feed(chunk []byte) (iter.Seq[Frame], error) {
	if r.frameSize <= 0 {
		return nil, ErrNotConfigured
	}

	r.carry = append(r.carry, chunk...)

	return r.frames, nil
}

func (r *Reassembler) frames(yield func(Frame) bool) {
	defer r.compact()

	for len(r.carry)-r.off >= r.frameSize {
		frame := make(Frame, r.frameSize)
		copy(frame, r.carry[r.off:])
		r.off += r.frameSize

		if !yield(frame) {
			return
		}
	}
}

// compact moves the unconsumed tail to the front of carry.
func (r *Reassembler) compact() {
	if r.off == 0 {
		return
	}

	n := copy(r.carry, r.carry[r.off:])
	r.carry = r.carry[:n]
	r.off = 0
}

// Flush empties the Reassembler at end of stream. The returned sequence yields
// any complete frames still buffered and then, with pad set, the remaining
// partial carry zero-padded to a full frame. Without pad the partial carry is
// dropped. The Reassembler is reset once the sequence has been ranged over.
func (r *Reassembler) Flush(pad bool) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		defer r.Reset()

		if r.frameSize <= 0 {
			return
		}

		for len(r.carry)-r.off >= r.frameSize {
			frame := make(Frame, r.frameSize)
			copy(frame, r.carry[r.off:])
			r.off += r.frameSize

			if !yield(frame) {
				return
			}
		}

		if r.off == len(r.carry) || !pad {
			return
		}

		frame := make(Frame, r.frameSize)
		copy(frame, r.carry[r.off:])
		yield(frame)
	}
}
