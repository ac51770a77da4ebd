// SPDX-License-Identifier: EPL-2.0

package adts

import (
	"fmt"
	"io"
)

// Writer emits ADTS records to an underlying io.Writer.
type Writer struct {
	w   io.Writer
	buf []byte

	records int
	bytes   int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord writes h followed by payload as a single Write call. The
// payload length in h is replaced by len(payload).
func (w *Writer) WriteRecord(h Header, payload []byte) error {
	var err error

	w.buf, err = Record{Header: h, Payload: payload}.AppendBinary(w.buf[:0])
	if err != nil {
		return err
	}

	n, err := w.w.Write(w.buf)
	w.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write record %d: %w", w.records, err)
	}

	w.records++

	return nil
}

// Records is the number of records written so far.
func (w *Writer) Records() int { return w.records }

// Bytes is the number of bytes written so far, headers included.
func (w *Writer) Bytes() int64 { return w.bytes }
