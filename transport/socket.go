package transport

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// Socket is a UDP endpoint polled from a tick loop rather than serviced by
// a background goroutine. Poll does not wait for traffic: it arms a read
// deadline one microsecond ahead before every read, so a datagram already
// queued is returned and a read with no datagram waiting times out as soon
// as the runtime's timer fires instead of stalling the caller's tick.
type Socket struct {
	conn *net.UDPConn
	peer *net.UDPAddr
}

// Listen opens a UDP socket bound to localAddr (e.g. ":21928", or ":0" for
// an ephemeral port).
func Listen(localAddr string) (*Socket, error) {
	addr, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listen",
			"address":  localAddr,
			"error":    err,
		}).Error("failed to resolve local address")
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listen",
			"address":  localAddr,
			"error":    err,
		}).Error("failed to open UDP socket")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "Listen",
		"local":    conn.LocalAddr(),
	}).Info("UDP socket opened")
	return &Socket{conn: conn}, nil
}

// SetPeer fixes the address Send writes to. Poll does not filter on it;
// it returns datagrams from any sender.
func (s *Socket) SetPeer(addr *net.UDPAddr) {
	s.peer = addr
}

// Peer returns the socket's current fixed partner address, or nil if none
// has been set yet.
func (s *Socket) Peer() *net.UDPAddr {
	return s.peer
}

// LocalAddr returns the socket's bound local address.
func (s *Socket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Send writes data to the socket's fixed peer. It returns an error if no
// peer has been set.
func (s *Socket) Send(data []byte) error {
	if s.peer == nil {
		return errors.New("transport: no peer set")
	}
	_, err := s.conn.WriteToUDP(data, s.peer)
	return err
}

// SendTo writes data to an explicit address, used during the invitation
// handshake before a peer has been confirmed.
func (s *Socket) SendTo(data []byte, addr *net.UDPAddr) error {
	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

// Poll performs one non-blocking read attempt. It returns (0, nil, nil)
// if no datagram was waiting, rather than treating that as an error.
func (s *Socket) Poll(buf []byte) (int, *net.UDPAddr, error) {
	// A deadline already in the past makes the read fail before it
	// looks at the socket, so it is set slightly ahead of now.
	if err := s.conn.SetReadDeadline(time.Now().Add(time.Microsecond)); err != nil {
		return 0, nil, err
	}
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	return n, addr, nil
}

// Close releases the underlying socket.
func (s *Socket) Close() error {
	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"local":    s.conn.LocalAddr(),
	}).Info("closing UDP socket")
	return s.conn.Close()
}
