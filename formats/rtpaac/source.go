// SPDX-License-Identifier: EPL-2.0

package rtpaac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pion/rtp"

	"github.com/ik5/audcap/formats/adts"
)

// Config describes the AAC stream an RTP session carries, as signalled out of
// band (SDP rtpmap and fmtp lines).
type Config struct {
	PayloadType uint8
	// Profile is the ADTS profile field, the audio object type minus one.
	Profile    int
	SampleRate int
	Channels   int

	Logger *slog.Logger
}

func (c Config) header() adts.Header {
	return adts.Header{Profile: c.Profile, SampleRate: c.SampleRate, Channels: c.Channels}
}

// PacketReader delivers RTP packets one at a time. It returns io.EOF when the
// session ends.
type PacketReader interface {
	ReadPacket(ctx context.Context) (*rtp.Packet, error)
}

// Source turns an RTP AAC-hbr session into ADTS records, one per access unit.
// Packets with another payload type are skipped; sequence gaps are counted.
type Source struct {
	r      PacketReader
	cfg    Config
	logger *slog.Logger

	depack  depacketizer
	pending []adts.Record

	started   bool
	lastSeq   uint16
	lost      int
	malformed int
	oversize  int
	packets   int
}

func NewSource(r PacketReader, cfg Config) (*Source, error) {
	if err := cfg.header().Validate(); err != nil {
		return nil, fmt.Errorf("rtpaac: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{
		r:      r,
		cfg:    cfg,
		logger: logger.With("component", "rtpaac"),
	}, nil
}

// NextUnit returns the next access unit wrapped in an ADTS record.
// Malformed packets are logged and skipped.
func (s *Source) NextUnit(ctx context.Context) (adts.Record, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return adts.Record{}, err
		}

		pkt, err := s.r.ReadPacket(ctx)
		if errors.Is(err, ErrMalformedPacket) {
			s.malformed++
			s.logger.Debug("skipping packet", "error", err)
			continue
		}
		if err != nil {
			return adts.Record{}, err
		}

		if err := s.handle(pkt); err != nil {
			s.malformed++
			s.logger.Debug("skipping packet", "seq", pkt.SequenceNumber, "error", err)
		}
	}

	rec := s.pending[0]
	s.pending = s.pending[1:]

	return rec, nil
}

func (s *Source) handle(pkt *rtp.Packet) error {
	if pkt.PayloadType != s.cfg.PayloadType {
		return nil
	}

	s.packets++
	s.track(pkt.SequenceNumber)

	units, err := s.depack.push(pkt.Payload, pkt.Marker)
	if err != nil {
		return err
	}

	h := s.cfg.header()
	for _, au := range units {
		if err := checkUnit(au); err != nil {
			s.oversize++
			s.logger.Warn("skipping access unit", "seq", pkt.SequenceNumber, "error", err)
			continue
		}

		h.PayloadLength = len(au)
		s.pending = append(s.pending, adts.Record{Header: h, Payload: au})
	}

	return nil
}

func (s *Source) track(seq uint16) {
	if s.started {
		if gap := seq - s.lastSeq - 1; gap != 0 && gap < 1<<15 {
			s.lost += int(gap)
			s.depack.reset()
			s.logger.Warn("packet loss", "missing", gap, "seq", seq)
		}
	}

	s.started = true
	s.lastSeq = seq
}

// Packets is the number of packets accepted for the configured payload type.
func (s *Source) Packets() int { return s.packets }

// Lost is the number of packets missing from the sequence so far.
func (s *Source) Lost() int { return s.lost }

// Malformed is the number of packets that could not be parsed.
func (s *Source) Malformed() int { return s.malformed }

// Oversize is the number of access units skipped because they do not fit in
// one ADTS record.
func (s *Source) Oversize() int { return s.oversize }

// NewPacketizer returns an rtp.Packetizer that sends one access unit per
// Packetize call with a timestamp step of 1024 samples per unit.
func NewPacketizer(cfg Config, mtu uint16, ssrc uint32) rtp.Packetizer {
	return rtp.NewPacketizer(mtu, cfg.PayloadType, ssrc, Payloader{}, rtp.NewRandomSequencer(), uint32(cfg.SampleRate))
}
