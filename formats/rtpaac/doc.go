// SPDX-License-Identifier: EPL-2.0

// Package rtpaac carries AAC access units over RTP using the AAC-hbr mode of
// RFC 3640.
//
// Source is the container-backed counterpart of adts.Reader: both hand out
// one adts.Record per access unit through NextUnit, so a decoding pipeline
// does not care whether units come from an .aac file or a network session.
//
//	conn, _ := net.ListenPacket("udp", ":5004")
//	src, _ := rtpaac.NewSource(rtpaac.NewConnReader(conn), rtpaac.Config{
//	    PayloadType: 97,
//	    Profile:     1,
//	    SampleRate:  48000,
//	    Channels:    2,
//	})
//	rec, err := src.NextUnit(ctx)
//
// The stream parameters are not carried in the packets and must come from
// signalling. Payloader and NewPacketizer produce the sending side.
package rtpaac
