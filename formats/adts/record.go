// SPDX-License-Identifier: EPL-2.0

package adts

// Record is one ADTS frame: a header and the compressed payload it describes.
type Record struct {
	Header  Header
	Payload []byte
}

// AppendBinary appends header and payload to b. The header's PayloadLength is
// taken from len(Payload).
func (r Record) AppendBinary(b []byte) ([]byte, error) {
	h := r.Header
	h.PayloadLength = len(r.Payload)

	b, err := h.AppendBinary(b)
	if err != nil {
		return b, err
	}

	return append(b, r.Payload...), nil
}

func (r Record) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, HeaderSize+len(r.Payload)))
}
