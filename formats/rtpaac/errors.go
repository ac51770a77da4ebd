// SPDX-License-Identifier: EPL-2.0

package rtpaac

import "errors"

var (
	ErrMalformedPacket = errors.New("malformed RTP packet")
	ErrMalformedAU     = errors.New("malformed AAC access unit headers")
	ErrAUTooLarge      = errors.New("AAC access unit larger than an ADTS payload (8184 bytes)")
)
