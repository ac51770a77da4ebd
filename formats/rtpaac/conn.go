// SPDX-License-Identifier: EPL-2.0

package rtpaac

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pion/rtp"
)

const (
	maxDatagram  = 65535
	pollInterval = 250 * time.Millisecond
)

// ConnReader reads RTP packets from a datagram socket.
type ConnReader struct {
	conn net.PacketConn
	buf  []byte
}

func NewConnReader(conn net.PacketConn) *ConnReader {
	return &ConnReader{conn: conn, buf: make([]byte, maxDatagram)}
}

// ReadPacket blocks until a packet arrives or ctx is done. The socket is
// polled with short read deadlines so cancellation is noticed. A closed socket
// ends the session with io.EOF. The packet payload is only valid until the
// next call.
func (c *ConnReader) ReadPacket(ctx context.Context) (*rtp.Packet, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		deadline := time.Now().Add(pollInterval)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}

		if err := c.conn.SetReadDeadline(deadline); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil, io.EOF
			}

			return nil, fmt.Errorf("set read deadline: %w", err)
		}

		n, _, err := c.conn.ReadFrom(c.buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}

			if errors.Is(err, net.ErrClosed) {
				return nil, io.EOF
			}

			return nil, fmt.Errorf("read packet: %w", err)
		}

		pkt := &rtp.Packet{}
		if err := pkt.Unmarshal(c.buf[:n]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
		}

		return pkt, nil
	}
}
