package session

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kissbox/netump/clock"
	"github.com/kissbox/netump/fec"
	"github.com/kissbox/netump/fifo"
	"github.com/kissbox/netump/limits"
	"github.com/kissbox/netump/receive"
	"github.com/kissbox/netump/transmit"
	"github.com/kissbox/netump/transport"
	"github.com/kissbox/netump/wire"
)

// State is a session's position in the NetUMP handshake/liveness state
// machine.
type State int32

const (
	// StateClosed is the initial and terminal state: no session exists.
	StateClosed State = iota
	// StateInvite is actively (re)sending INVITATION and waiting for
	// INVITATION_ACCEPTED.
	StateInvite
	// StateWaitInvite is passively listening for an incoming INVITATION.
	StateWaitInvite
	// StateOpened is a live, bidirectional session.
	StateOpened
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateWaitInvite:
		return "WAIT_INVITE"
	case StateInvite:
		return "INVITE"
	case StateOpened:
		return "OPENED"
	default:
		return "UNKNOWN"
	}
}

// UMPCallback receives one decoded UMP message (1-4 words) delivered by
// the session partner.
type UMPCallback func(words []uint32)

// ConnectionCallback is invoked once a session reaches StateOpened.
type ConnectionCallback func()

// DisconnectCallback is invoked once an open session leaves StateOpened,
// whether by local or partner action, or by liveness timeout.
type DisconnectCallback func()

// Config holds the endpoint identity and policy choices a Session needs.
type Config struct {
	EndpointName      string
	ProductInstanceID string

	// ReinviteOnPeerBye, if true, causes an initiator that receives BYE
	// from its partner while OPENED to re-enter StateInvite against the
	// same peer address instead of closing outright. A listener returns
	// to StateWaitInvite regardless of this setting.
	ReinviteOnPeerBye bool

	// VerifyInvitationAcceptedSender, if false, accepts an
	// INVITATION_ACCEPTED from any sender while in StateInvite and
	// adopts it as the session partner, matching the original
	// implementation's permissive (and documented-as-questionable)
	// behavior. If true, only a reply from the address the invitation
	// itself was sent to is accepted.
	VerifyInvitationAcceptedSender bool
}

// Errors returned by Session's public methods.
var (
	ErrNotOpened      = errors.New("session: not opened")
	ErrFIFOFull       = errors.New("session: outbound FIFO is full")
	ErrAlreadyStarted = errors.New("session: already inviting or open")
	ErrNoPeer         = errors.New("session: no peer has been invited yet")
)

// Session is one NetUMP session, driven by repeated calls to Tick.
type Session struct {
	mu           sync.Mutex
	cfg          Config
	onUMP        UMPCallback
	onConnect    ConnectionCallback
	onDisconnect DisconnectCallback

	state          atomic.Int32
	connectionLost atomic.Bool
	peerClosed     atomic.Bool

	sock       *transport.Socket
	ring       *fifo.Ring
	assembler  *transmit.Assembler
	dispatcher *receive.Dispatcher
	dedup      *fec.Dedup
	window     *fec.Window
	ticks      clock.Ticks

	peerAddr    *net.UDPAddr
	isInitiator bool

	lastRecvMark   uint32
	lastSendMark   uint32
	lastInviteMark uint32
	pingID         uint32

	readBuf [2048]byte
}

// New constructs a Session bound to sock, initially passively listening
// for an incoming invitation (StateWaitInvite). Call InitiateSession
// instead to actively invite a peer.
func New(sock *transport.Socket, cfg Config) (*Session, error) {
	if err := limits.ValidateEndpointName(cfg.EndpointName); err != nil {
		return nil, err
	}
	if err := limits.ValidateProductInstanceID(cfg.ProductInstanceID); err != nil {
		return nil, err
	}

	window := fec.NewWindow(limits.FECEntries)
	dedup := fec.NewDedup(limits.FECEntries)

	s := &Session{
		cfg:        cfg,
		sock:       sock,
		ring:       fifo.NewRing(limits.FIFOCapacity),
		assembler:  transmit.NewAssembler(window),
		dispatcher: receive.NewDispatcher(dedup),
		dedup:      dedup,
		window:     window,
	}
	s.state.Store(int32(StateWaitInvite))
	return s, nil
}

// SetEndpointName changes the endpoint name advertised in future
// invitations. Safe to call from any goroutine.
func (s *Session) SetEndpointName(name string) error {
	if err := limits.ValidateEndpointName(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.EndpointName = name
	s.mu.Unlock()
	return nil
}

// SetProductInstanceID changes the product instance ID advertised in
// future invitations. Safe to call from any goroutine.
func (s *Session) SetProductInstanceID(piid string) error {
	if err := limits.ValidateProductInstanceID(piid); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg.ProductInstanceID = piid
	s.mu.Unlock()
	return nil
}

// SetCallback installs the function called once per received UMP
// message. Safe to call from any goroutine.
func (s *Session) SetCallback(fn UMPCallback) {
	s.mu.Lock()
	s.onUMP = fn
	s.mu.Unlock()
}

// SetConnectionCallback installs the function called when the session
// opens. Safe to call from any goroutine.
func (s *Session) SetConnectionCallback(fn ConnectionCallback) {
	s.mu.Lock()
	s.onConnect = fn
	s.mu.Unlock()
}

// SetDisconnectCallback installs the function called when an open
// session closes. Safe to call from any goroutine.
func (s *Session) SetDisconnectCallback(fn DisconnectCallback) {
	s.mu.Lock()
	s.onDisconnect = fn
	s.mu.Unlock()
}

// SelectErrorCorrectionMode enables or disables the FEC replay tail on
// outgoing datagrams.
func (s *Session) SelectErrorCorrectionMode(enabled bool) {
	s.assembler.SetErrorCorrection(enabled)
}

// GetSessionStatus returns the session's current state. Safe to call
// from any goroutine.
func (s *Session) GetSessionStatus() State {
	return State(s.state.Load())
}

// ReadAndResetConnectionLost reports whether the session has declared
// the partner unreachable (liveness timeout) since the last call, and
// clears the flag. Safe to call from any goroutine.
func (s *Session) ReadAndResetConnectionLost() bool {
	return s.connectionLost.Swap(false)
}

// ReadAndResetPeerClosedSession reports whether the partner sent BYE
// since the last call, and clears the flag. Safe to call from any
// goroutine.
func (s *Session) ReadAndResetPeerClosedSession() bool {
	return s.peerClosed.Swap(false)
}

// SendUMP queues one UMP message for transmission on the next Tick. It is
// the one operation, besides the Set*/Get* accessors, safe to call from a
// goroutine other than the one driving Tick — the underlying FIFO is a
// lock-free single-producer/single-consumer ring.
func (s *Session) SendUMP(words []uint32) error {
	if s.GetSessionStatus() != StateOpened {
		return ErrNotOpened
	}
	if !s.ring.Push(words) {
		return ErrFIFOFull
	}
	return nil
}

// InitiateSession begins actively inviting peer. Must be called from the
// same goroutine that calls Tick.
func (s *Session) InitiateSession(peer *net.UDPAddr) error {
	state := s.GetSessionStatus()
	if state == StateInvite || state == StateOpened {
		return ErrAlreadyStarted
	}
	s.peerAddr = peer
	s.isInitiator = true
	s.sock.SetPeer(peer)
	s.state.Store(int32(StateInvite))
	s.sendInvitationNow()
	logrus.WithFields(logrus.Fields{
		"function": "InitiateSession",
		"peer":     peer.String(),
	}).Info("inviting session partner")
	return nil
}

// RestartInitiator re-sends an invitation to the most recently invited
// peer, for use after a liveness timeout or a failed handshake attempt.
// Must be called from the same goroutine that calls Tick.
func (s *Session) RestartInitiator() error {
	if s.peerAddr == nil {
		return ErrNoPeer
	}
	s.isInitiator = true
	s.sock.SetPeer(s.peerAddr)
	s.state.Store(int32(StateInvite))
	s.sendInvitationNow()
	return nil
}

// sendInvitationNow sends an INVITATION immediately rather than waiting
// for the next retry-interval check, and resets the retry clock so the
// timer-driven retry in handleTimers doesn't fire again right away.
func (s *Session) sendInvitationNow() {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	if err := s.sock.Send(s.wrap(mustEncodeInvitation(cfg))); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "sendInvitationNow",
			"error":    err,
		}).Warn("failed to send INVITATION")
	}
	s.lastInviteMark = s.ticks.Mark()
}

// CloseSession sends BYE (if a session was open or being invited) and
// transitions to StateClosed. It blocks briefly to give the BYE datagram
// a chance to reach the wire before the caller tears down the socket.
// Must be called from the same goroutine that calls Tick.
func (s *Session) CloseSession(reason wire.ByeReason) {
	state := s.GetSessionStatus()
	wasActive := state == StateOpened || state == StateInvite
	if wasActive {
		if err := s.sock.Send(s.wrap(wire.EncodeBye(nil, reason))); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "CloseSession",
				"error":    err,
			}).Warn("failed to send BYE")
		}
	}
	s.state.Store(int32(StateClosed))
	if wasActive {
		time.Sleep(limits.CloseFlushDelayMillis * time.Millisecond)
	}
	if state == StateOpened {
		s.mu.Lock()
		onDisconnect := s.onDisconnect
		s.mu.Unlock()
		if onDisconnect != nil {
			onDisconnect()
		}
	}
}

func (s *Session) wrap(cmd []byte) []byte {
	sig := make([]byte, wire.HeaderLen)
	wire.PutSignature(sig)
	return append(sig, cmd...)
}

func (s *Session) openSession(peer *net.UDPAddr) {
	s.peerAddr = peer
	s.sock.SetPeer(peer)
	s.assembler.Reset()
	s.dedup.Reset()
	s.lastRecvMark = s.ticks.Mark()
	s.lastSendMark = s.ticks.Mark()
	s.connectionLost.Store(false)
	s.peerClosed.Store(false)
	s.state.Store(int32(StateOpened))
}
