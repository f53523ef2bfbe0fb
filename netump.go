package netump

import (
	"fmt"
	"net"
	"time"

	"github.com/kissbox/netump/session"
	"github.com/kissbox/netump/transport"
	"github.com/kissbox/netump/wire"
)

// Options configures a new Endpoint.
type Options struct {
	// EndpointName and ProductInstanceID identify this endpoint to the
	// session partner during the invitation handshake.
	EndpointName      string
	ProductInstanceID string

	// ListenAddress is the local UDP address to bind, e.g. ":21928" or
	// "0.0.0.0:0" for an ephemeral port. Defaults to ":0".
	ListenAddress string

	// ReinviteOnPeerBye, if true, causes an initiating session to
	// re-invite the same partner after a graceful BYE instead of closing
	// outright. A listening session returns to waiting for an invitation
	// either way. Defaults to true.
	ReinviteOnPeerBye bool

	// VerifyInvitationAcceptedSender, if true, rejects an
	// INVITATION_ACCEPTED that did not come from the address the
	// invitation was sent to.
	VerifyInvitationAcceptedSender bool
}

// NewOptions returns Options populated with defaults.
func NewOptions() *Options {
	return &Options{
		ListenAddress:     ":0",
		ReinviteOnPeerBye: true,
	}
}

// Endpoint is a NetUMP session endpoint bound to a local UDP socket.
type Endpoint struct {
	sock *transport.Socket
	sess *session.Session
}

// New constructs an Endpoint bound per opts. A nil opts uses NewOptions's
// defaults.
func New(opts *Options) (*Endpoint, error) {
	if opts == nil {
		opts = NewOptions()
	}
	listenAddr := opts.ListenAddress
	if listenAddr == "" {
		listenAddr = ":0"
	}

	sock, err := transport.Listen(listenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketCreate, err)
	}

	cfg := session.Config{
		EndpointName:                   opts.EndpointName,
		ProductInstanceID:              opts.ProductInstanceID,
		ReinviteOnPeerBye:              opts.ReinviteOnPeerBye,
		VerifyInvitationAcceptedSender: opts.VerifyInvitationAcceptedSender,
	}
	sess, err := session.New(sock, cfg)
	if err != nil {
		sock.Close()
		return nil, err
	}

	return &Endpoint{sock: sock, sess: sess}, nil
}

// LocalAddr returns the endpoint's bound local address.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.sock.LocalAddr()
}

// SetEndpointName changes the name advertised in future invitations.
func (e *Endpoint) SetEndpointName(name string) error {
	return e.sess.SetEndpointName(name)
}

// SetProductInstanceID changes the product instance ID advertised in
// future invitations.
func (e *Endpoint) SetProductInstanceID(piid string) error {
	return e.sess.SetProductInstanceID(piid)
}

// SetCallback installs the function called once per received UMP
// message.
func (e *Endpoint) SetCallback(fn session.UMPCallback) {
	e.sess.SetCallback(fn)
}

// SetConnectionCallback installs the function called when the session
// opens.
func (e *Endpoint) SetConnectionCallback(fn session.ConnectionCallback) {
	e.sess.SetConnectionCallback(fn)
}

// SetDisconnectCallback installs the function called when an open
// session closes.
func (e *Endpoint) SetDisconnectCallback(fn session.DisconnectCallback) {
	e.sess.SetDisconnectCallback(fn)
}

// SelectErrorCorrectionMode enables or disables the FEC replay tail on
// outgoing datagrams.
func (e *Endpoint) SelectErrorCorrectionMode(enabled bool) {
	e.sess.SelectErrorCorrectionMode(enabled)
}

// InitiateSession begins actively inviting the peer at addr (e.g.
// "192.168.1.20:21928").
func (e *Endpoint) InitiateSession(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	return e.sess.InitiateSession(udpAddr)
}

// RestartSessionInitiator re-sends an invitation to the most recently
// invited peer.
func (e *Endpoint) RestartSessionInitiator() error {
	return e.sess.RestartInitiator()
}

// CloseSession sends BYE with reason and closes the session.
func (e *Endpoint) CloseSession(reason wire.ByeReason) {
	e.sess.CloseSession(reason)
}

// Tick advances the endpoint by one unit of time. Call it roughly every
// IterationInterval.
func (e *Endpoint) Tick() {
	e.sess.Tick()
}

// IterationInterval is how often the host should call Tick.
func (e *Endpoint) IterationInterval() time.Duration {
	return time.Millisecond
}

// GetSessionStatus returns the session's current state.
func (e *Endpoint) GetSessionStatus() session.State {
	return e.sess.GetSessionStatus()
}

// IsRunning reports whether the session is currently OPENED.
func (e *Endpoint) IsRunning() bool {
	return e.sess.GetSessionStatus() == session.StateOpened
}

// ReadAndResetConnectionLost reports whether the session has declared
// the partner unreachable since the last call, clearing the flag.
func (e *Endpoint) ReadAndResetConnectionLost() bool {
	return e.sess.ReadAndResetConnectionLost()
}

// ReadAndResetPeerClosedSession reports whether the partner sent BYE
// since the last call, clearing the flag.
func (e *Endpoint) ReadAndResetPeerClosedSession() bool {
	return e.sess.ReadAndResetPeerClosedSession()
}

// SendUMP queues one UMP message for transmission on the next Tick. Safe
// to call from a goroutine other than the one driving Tick.
func (e *Endpoint) SendUMP(words []uint32) error {
	return e.sess.SendUMP(words)
}

// Close gracefully closes the session, if any, and releases the local
// socket.
func (e *Endpoint) Close() error {
	e.sess.CloseSession(wire.ByeUserTerminatedSession)
	return e.sock.Close()
}
