// SPDX-License-Identifier: EPL-2.0

package rtpaac

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/audcap/formats/adts"
)

// AAC-hbr mode: a 16-bit AU-headers-length in bits, then one 16-bit header
// per access unit holding a 13-bit size and a 3-bit index (delta).
const (
	auHeaderBits  = 16
	auSizeBits    = 13
	auSectionSize = 2
)

// depacketizer splits AAC-hbr payloads into access units and rebuilds
// fragmented ones across packets.
type depacketizer struct {
	frag     []byte
	fragSize int
}

// push returns the complete access units carried by payload. Each unit is a
// fresh slice. marker is the RTP marker bit, which ends a fragmented unit.
func (d *depacketizer) push(payload []byte, marker bool) ([][]byte, error) {
	if len(payload) < auSectionSize {
		return nil, fmt.Errorf("%w: %d byte payload", ErrMalformedAU, len(payload))
	}

	headersBits := int(binary.BigEndian.Uint16(payload))
	if headersBits == 0 || headersBits%auHeaderBits != 0 {
		return nil, fmt.Errorf("%w: AU-headers-length %d", ErrMalformedAU, headersBits)
	}

	count := headersBits / auHeaderBits
	headers := payload[auSectionSize:]
	if len(headers) < count*2 {
		return nil, fmt.Errorf("%w: %d headers in %d bytes", ErrMalformedAU, count, len(headers))
	}

	data := headers[count*2:]
	sizes := make([]int, count)
	total := 0
	for i := range count {
		sizes[i] = int(binary.BigEndian.Uint16(headers[i*2:]) >> (auHeaderBits - auSizeBits))
		total += sizes[i]
	}

	// A single unit larger than the data is a fragment.
	if count == 1 && sizes[0] > len(data) {
		return d.fragment(sizes[0], data, marker)
	}

	d.reset()

	if total > len(data) {
		return nil, fmt.Errorf("%w: units need %d bytes, have %d", ErrMalformedAU, total, len(data))
	}

	units := make([][]byte, 0, count)
	for _, size := range sizes {
		units = append(units, append([]byte(nil), data[:size]...))
		data = data[size:]
	}

	return units, nil
}

func (d *depacketizer) fragment(size int, data []byte, marker bool) ([][]byte, error) {
	if d.fragSize != 0 && d.fragSize != size {
		d.reset()
		return nil, fmt.Errorf("%w: fragment of a %d byte unit while assembling %d", ErrMalformedAU, size, d.fragSize)
	}

	d.fragSize = size
	d.frag = append(d.frag, data...)

	if len(d.frag) > size {
		d.reset()
		return nil, fmt.Errorf("%w: fragments exceed unit size %d", ErrMalformedAU, size)
	}

	if !marker {
		return nil, nil
	}

	if len(d.frag) != size {
		n := len(d.frag)
		d.reset()
		return nil, fmt.Errorf("%w: unit ended at %d of %d bytes", ErrMalformedAU, n, size)
	}

	unit := append([]byte(nil), d.frag...)
	d.reset()

	return [][]byte{unit}, nil
}

func (d *depacketizer) reset() {
	d.frag = d.frag[:0]
	d.fragSize = 0
}

// Payloader packs one access unit per call into AAC-hbr payloads of at most
// mtu bytes, fragmenting units that do not fit. Units too large for one ADTS
// record yield nil. It implements rtp.Payloader.
type Payloader struct{}

func (Payloader) Payload(mtu uint16, au []byte) [][]byte {
	if len(au) == 0 || checkUnit(au) != nil || int(mtu) <= auSectionSize+2 {
		return nil
	}

	room := int(mtu) - auSectionSize - 2

	var out [][]byte
	for off := 0; off < len(au); off += room {
		end := min(off+room, len(au))

		p := make([]byte, auSectionSize+2+end-off)
		binary.BigEndian.PutUint16(p[0:], auHeaderBits)
		binary.BigEndian.PutUint16(p[2:], uint16(len(au))<<(auHeaderBits-auSizeBits))
		copy(p[4:], au[off:end])

		out = append(out, p)
	}

	return out
}

// checkUnit rejects units that cannot be framed as a single ADTS record.
func checkUnit(au []byte) error {
	if len(au) > adts.MaxPayloadLength {
		return fmt.Errorf("%w: %d bytes", ErrAUTooLarge, len(au))
	}

	return nil
}
