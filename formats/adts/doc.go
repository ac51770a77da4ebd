// SPDX-License-Identifier: EPL-2.0

// Package adts reads and writes Audio Data Transport Stream records, the
// self-describing framing used for raw AAC files.
//
// Each record starts with a 7-byte header that carries the profile, sample
// rate, channel configuration and total record length:
//
//	hdr, err := adts.Serialize(1, 44100, 2, len(payload))
//	// FF F1 50 80 19 FF FC for a 200-byte payload
//
// Parse does the reverse and returns the payload that follows:
//
//	h, payload, err := adts.Parse(stream)
//
// Only the CRC-less variant is supported. Headers with protection_absent
// cleared fail with ErrUnsupportedHeaderVariant.
//
// # Streams
//
// Writer appends records to an io.Writer and Reader walks an io.Reader record
// by record. Neither resynchronizes after a bad header; callers that want to
// skip garbage can search for the next candidate header with FindSync.
//
// # Concurrency
//
// Serialize, Parse and the Header methods are stateless and safe for
// concurrent use. Reader and Writer are not.
package adts
