// SPDX-License-Identifier: EPL-2.0

package adts

import "errors"

var (
	ErrUnsupportedSampleRate    = errors.New("unsupported ADTS sample rate")
	ErrInvalidChannelCount      = errors.New("ADTS channel count must be 1-6 or 8")
	ErrInvalidProfile           = errors.New("ADTS profile must fit in 2 bits")
	ErrPayloadTooLarge          = errors.New("ADTS record longer than 8191 bytes")
	ErrSyncMismatch             = errors.New("ADTS sync word not found")
	ErrTruncatedHeader          = errors.New("truncated ADTS header")
	ErrTruncatedPayload         = errors.New("truncated ADTS payload")
	ErrUnsupportedHeaderVariant = errors.New("ADTS header with CRC is not supported")
)
