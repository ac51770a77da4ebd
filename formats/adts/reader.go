// SPDX-License-Identifier: EPL-2.0

package adts

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Reader reads consecutive ADTS records from a byte stream such as an .aac file.
// It does not resynchronize: any malformed header ends the stream with an error.
type Reader struct {
	r   io.Reader
	hdr [HeaderSize]byte

	offset int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Offset is the stream position of the next record.
func (r *Reader) Offset() int64 { return r.offset }

// NextUnit reads the next record. It returns io.EOF when the stream ends on a
// record boundary. The payload is freshly allocated for each record.
func (r *Reader) NextUnit(ctx context.Context) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	n, err := io.ReadFull(r.r, r.hdr[:])
	switch {
	case errors.Is(err, io.EOF):
		return Record{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncatedHeader, n, r.offset)
	case err != nil:
		return Record{}, fmt.Errorf("read header at offset %d: %w", r.offset, err)
	}

	h, err := ParseHeader(r.hdr[:])
	if err != nil {
		return Record{}, fmt.Errorf("offset %d: %w", r.offset, err)
	}

	payload := make([]byte, h.PayloadLength)
	n, err = io.ReadFull(r.r, payload)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Record{}, fmt.Errorf("%w: have %d of %d bytes at offset %d", ErrTruncatedPayload, n, h.PayloadLength, r.offset)
	case err != nil:
		return Record{}, fmt.Errorf("read payload at offset %d: %w", r.offset, err)
	}

	r.offset += int64(h.RecordLength())

	return Record{Header: h, Payload: payload}, nil
}
