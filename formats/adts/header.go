// SPDX-License-Identifier: EPL-2.0

package adts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/icza/bitio"
)

const (
	// HeaderSize is the length of a header without CRC.
	HeaderSize = 7
	// MaxRecordLength is the largest value the 13-bit frame_length field holds.
	MaxRecordLength = 1<<13 - 1
	// MaxPayloadLength is the largest payload that fits in one record.
	MaxPayloadLength = MaxRecordLength - HeaderSize
	// SamplesPerRecord is the number of PCM sample instants one AAC frame carries.
	SamplesPerRecord = 1024

	syncWord       = 0xFFF
	bufferFullness = 0x7FF // variable bit rate
)

// sampleRates is the sampling_frequency_index table.
var sampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000,
}

// SampleRateIndex returns the sampling_frequency_index of rate.
func SampleRateIndex(rate int) (int, error) {
	for i, r := range sampleRates {
		if r == rate {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, rate)
}

// SampleRateAt returns the rate stored at sampling_frequency_index index.
func SampleRateAt(index int) (int, error) {
	if index < 0 || index >= len(sampleRates) {
		return 0, fmt.Errorf("%w: index %d", ErrUnsupportedSampleRate, index)
	}

	return sampleRates[index], nil
}

// Header holds the fields of a 7-byte ADTS header that vary between streams.
// Everything else is written with fixed values: MPEG-4, no CRC, no private or
// copyright bits, buffer fullness 0x7FF and a single raw data block.
type Header struct {
	// Profile is the 2-bit profile field, the audio object type minus one
	// (1 for AAC LC).
	Profile int
	// SampleRate in Hz, one of the rates in the sampling frequency table.
	SampleRate int
	// Channels is 1 to 6, or 8. Channel configuration 7 means eight channels,
	// so seven channels cannot be signalled.
	Channels int
	// PayloadLength is the number of bytes that follow the header.
	PayloadLength int
}

// RecordLength is the frame_length field: header plus payload.
func (h Header) RecordLength() int { return h.PayloadLength + HeaderSize }

// Duration is the play time of the AAC frame the record carries.
func (h Header) Duration() time.Duration {
	if h.SampleRate <= 0 {
		return 0
	}

	return time.Duration(SamplesPerRecord) * time.Second / time.Duration(h.SampleRate)
}

func (h Header) String() string {
	return fmt.Sprintf("profile=%d rate=%d channels=%d payload=%d", h.Profile, h.SampleRate, h.Channels, h.PayloadLength)
}

// Validate checks every field against what the header can encode.
func (h Header) Validate() error {
	_, _, err := h.fields()
	return err
}

func (h Header) fields() (sfIndex, chanConfig int, err error) {
	if h.Profile < 0 || h.Profile > 3 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidProfile, h.Profile)
	}

	sfIndex, err = SampleRateIndex(h.SampleRate)
	if err != nil {
		return 0, 0, err
	}

	switch {
	case h.Channels >= 1 && h.Channels <= 6:
		chanConfig = h.Channels
	case h.Channels == 8:
		chanConfig = 7
	case h.Channels == 7:
		return 0, 0, fmt.Errorf("%w: 7 channels cannot be signalled, channel config 7 means 8 (7.1)", ErrInvalidChannelCount)
	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidChannelCount, h.Channels)
	}

	if h.PayloadLength < 0 || h.RecordLength() > MaxRecordLength {
		return 0, 0, fmt.Errorf("%w: payload %d bytes", ErrPayloadTooLarge, h.PayloadLength)
	}

	return sfIndex, chanConfig, nil
}

// AppendBinary appends the 7 header bytes to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	sfIndex, chanConfig, err := h.fields()
	if err != nil {
		return b, err
	}

	buf := bytes.NewBuffer(b)
	w := bitio.NewWriter(buf)

	w.TryWriteBits(syncWord, 12)
	w.TryWriteBits(0, 1) // ID: MPEG-4
	w.TryWriteBits(0, 2) // layer
	w.TryWriteBits(1, 1) // protection_absent
	w.TryWriteBits(uint64(h.Profile), 2)
	w.TryWriteBits(uint64(sfIndex), 4)
	w.TryWriteBits(0, 1) // private_bit
	w.TryWriteBits(uint64(chanConfig), 3)
	w.TryWriteBits(0, 4) // original_copy, home, copyright_id_bit, copyright_id_start
	w.TryWriteBits(uint64(h.RecordLength()), 13)
	w.TryWriteBits(bufferFullness, 11)
	w.TryWriteBits(0, 2) // number_of_raw_data_blocks_in_frame - 1

	if w.TryError != nil {
		return b, fmt.Errorf("write header: %w", w.TryError)
	}

	if err := w.Close(); err != nil {
		return b, fmt.Errorf("write header: %w", err)
	}

	return buf.Bytes(), nil
}

func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

// UnmarshalBinary parses the first HeaderSize bytes of b. Trailing bytes are ignored.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: have %d of %d bytes", ErrTruncatedHeader, len(b), HeaderSize)
	}

	r := bitio.NewReader(bytes.NewReader(b[:HeaderSize]))

	sync := r.TryReadBits(12)
	r.TryReadBits(3) // ID, layer
	protectionAbsent := r.TryReadBits(1)
	profile := r.TryReadBits(2)
	sfIndex := r.TryReadBits(4)
	r.TryReadBits(1) // private_bit
	chanConfig := r.TryReadBits(3)
	r.TryReadBits(4) // original_copy, home, copyright bits
	frameLength := r.TryReadBits(13)
	r.TryReadBits(13) // buffer fullness, raw data blocks

	if r.TryError != nil {
		return fmt.Errorf("read header: %w", r.TryError)
	}

	if sync != syncWord {
		return fmt.Errorf("%w: got %#04x", ErrSyncMismatch, sync)
	}

	if protectionAbsent == 0 {
		return ErrUnsupportedHeaderVariant
	}

	if frameLength < HeaderSize {
		return fmt.Errorf("%w: frame_length %d", ErrTruncatedHeader, frameLength)
	}

	rate, err := SampleRateAt(int(sfIndex))
	if err != nil {
		return err
	}

	var channels int
	switch chanConfig {
	case 0:
		return fmt.Errorf("%w: channel configuration 0 is not supported", ErrInvalidChannelCount)
	case 7:
		channels = 8
	default:
		channels = int(chanConfig)
	}

	*h = Header{
		Profile:       int(profile),
		SampleRate:    rate,
		Channels:      channels,
		PayloadLength: int(frameLength) - HeaderSize,
	}

	return nil
}

// Serialize builds the header for a payload of payloadLength bytes.
func Serialize(profile, sampleRate, channels, payloadLength int) ([HeaderSize]byte, error) {
	var out [HeaderSize]byte

	h := Header{
		Profile:       profile,
		SampleRate:    sampleRate,
		Channels:      channels,
		PayloadLength: payloadLength,
	}

	b, err := h.MarshalBinary()
	if err != nil {
		return out, err
	}
	copy(out[:], b)

	return out, nil
}

// ParseHeader decodes a header from the start of b.
func ParseHeader(b []byte) (Header, error) {
	var h Header
	err := h.UnmarshalBinary(b)

	return h, err
}

// Parse decodes the record at the start of stream and returns its header and
// payload. The payload aliases stream. Bytes after the record are left alone.
func Parse(stream []byte) (Header, []byte, error) {
	h, err := ParseHeader(stream)
	if err != nil {
		return Header{}, nil, err
	}

	if avail := len(stream) - HeaderSize; avail < h.PayloadLength {
		return Header{}, nil, fmt.Errorf("%w: have %d of %d bytes", ErrTruncatedPayload, avail, h.PayloadLength)
	}

	return h, stream[HeaderSize:h.RecordLength():h.RecordLength()], nil
}

// FindSync returns the offset of the first candidate sync word in b, or -1.
// Callers use it to skip garbage after a failed Parse.
func FindSync(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == 0xFF && b[i+1]&0xF0 == 0xF0 {
			return i
		}
	}

	return -1
}
