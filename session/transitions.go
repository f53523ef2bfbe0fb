package session

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/kissbox/netump/limits"
	"github.com/kissbox/netump/receive"
	"github.com/kissbox/netump/wire"
)

// maxDatagramsPerTick bounds how many queued datagrams Tick will drain in
// one call, so a burst of incoming traffic cannot starve outbound
// transmission or the timer checks.
const maxDatagramsPerTick = 8

// Tick advances the session by one unit of time: it polls the socket for
// waiting datagrams, dispatches whatever commands they contain, checks
// the liveness/retry/idle-ping timers, and — if OPENED — drains the
// outbound FIFO into a transmitted datagram. The host is expected to
// call Tick roughly every millisecond.
func (s *Session) Tick() {
	s.ticks.Advance()

	s.mu.Lock()
	cfg := s.cfg
	onUMP := s.onUMP
	onConnect := s.onConnect
	onDisconnect := s.onDisconnect
	s.mu.Unlock()

	for i := 0; i < maxDatagramsPerTick; i++ {
		n, from, err := s.sock.Poll(s.readBuf[:])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Tick",
				"error":    err,
			}).Warn("socket poll failed")
			break
		}
		if n == 0 {
			break
		}
		s.handleDatagram(s.readBuf[:n], from, cfg, onUMP, onConnect, onDisconnect)
	}

	s.handleTimers(cfg, onDisconnect)
}

func (s *Session) handleDatagram(buf []byte, from *net.UDPAddr, cfg Config, onUMP UMPCallback, onConnect ConnectionCallback, onDisconnect DisconnectCallback) {
	events, err := s.dispatcher.Parse(buf)
	if err != nil && len(events) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "handleDatagram",
			"from":     from.String(),
			"error":    err,
		}).Debug("dropping malformed datagram")
		return
	}

	for _, ev := range events {
		state := s.GetSessionStatus()
		switch state {
		case StateWaitInvite:
			s.dispatchWaitInvite(ev, from, cfg, onConnect)
		case StateInvite:
			s.dispatchInvite(ev, from, cfg, onConnect)
		case StateOpened:
			s.dispatchOpened(ev, from, onUMP, onDisconnect, cfg)
		case StateClosed:
			// Ignore everything while closed; the host must call
			// InitiateSession to resume.
		}
	}
}

func (s *Session) dispatchWaitInvite(ev receive.Event, from *net.UDPAddr, cfg Config, onConnect ConnectionCallback) {
	if ev.Kind != receive.KindInvitation {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "dispatchWaitInvite",
		"peer":     from.String(),
		"endpoint": ev.Invitation.EndpointName,
	}).Info("accepting invitation")

	if err := s.sock.SendTo(s.wrap(mustEncodeInvitationAccepted(cfg)), from); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "dispatchWaitInvite",
			"error":    err,
		}).Warn("failed to send INVITATION_ACCEPTED")
		return
	}
	s.openSession(from)
	if onConnect != nil {
		onConnect()
	}
}

func (s *Session) dispatchInvite(ev receive.Event, from *net.UDPAddr, cfg Config, onConnect ConnectionCallback) {
	if ev.Kind == receive.KindInvitation {
		// A spurious invitation while we are ourselves mid-handshake:
		// reject it rather than entertaining a second session attempt.
		logrus.WithFields(logrus.Fields{
			"function": "dispatchInvite",
			"from":     from.String(),
		}).Warn("rejecting spurious INVITATION while inviting")
		if err := s.sock.SendTo(s.wrap(wire.EncodeBye(nil, wire.ByeTooManySessions)), from); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "dispatchInvite",
				"error":    err,
			}).Warn("failed to send BYE")
		}
		return
	}
	if ev.Kind != receive.KindInvitationAccepted {
		return
	}
	if cfg.VerifyInvitationAcceptedSender && s.peerAddr != nil && !addrEqual(from, s.peerAddr) {
		logrus.WithFields(logrus.Fields{
			"function": "dispatchInvite",
			"from":     from.String(),
			"expected": s.peerAddr.String(),
		}).Warn("ignoring INVITATION_ACCEPTED from unexpected sender")
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "dispatchInvite",
		"peer":     from.String(),
	}).Info("session accepted by partner")
	s.openSession(from)
	if onConnect != nil {
		onConnect()
	}
}

func (s *Session) dispatchOpened(ev receive.Event, from *net.UDPAddr, onUMP UMPCallback, onDisconnect DisconnectCallback, cfg Config) {
	fromPartner := addrEqual(from, s.peerAddr)

	switch ev.Kind {
	case receive.KindUMPData:
		// The session partner is fixed once OPENED; a UMP-DATA from
		// anyone else is silently dropped rather than delivered.
		if !fromPartner {
			logrus.WithFields(logrus.Fields{
				"function": "dispatchOpened",
				"from":     from.String(),
				"peer":     s.peerAddr.String(),
			}).Debug("dropping UMP-DATA from a non-partner address")
			return
		}
		s.lastRecvMark = s.ticks.Mark()
		if ev.Dropped {
			return
		}
		if onUMP == nil {
			return
		}
		for _, msg := range ev.Messages {
			onUMP(msg)
		}

	case receive.KindPing:
		if err := s.sock.Send(s.wrap(wire.EncodePingReply(nil, ev.PingID))); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "dispatchOpened",
				"error":    err,
			}).Warn("failed to send PING_REPLY")
		}

	case receive.KindPingReply:
		// The original implementation never actually validated that the
		// echoed ID matched the one it sent; this rewrite preserves that
		// behavior rather than inventing a validation the wire format
		// doesn't otherwise need. It still counts as liveness.
		s.lastRecvMark = s.ticks.Mark()

	case receive.KindBye:
		// Any sender gets a BYE_REPLY, but only a BYE from the actual
		// session partner tears the session down. The partner is
		// immutable once OPENED.
		if err := s.sock.SendTo(s.wrap(wire.EncodeByeReply(nil)), from); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "dispatchOpened",
				"error":    err,
			}).Warn("failed to send BYE_REPLY")
		}
		if !fromPartner {
			logrus.WithFields(logrus.Fields{
				"function": "dispatchOpened",
				"from":     from.String(),
				"peer":     s.peerAddr.String(),
			}).Debug("replied to BYE from a non-partner address without closing")
			return
		}
		s.peerClosed.Store(true)
		s.closeOnPartnerGone(cfg, onDisconnect)

	case receive.KindByeReply:
		// Response to our own BYE sent via CloseSession, which has
		// already transitioned the state synchronously.

	case receive.KindNAK, receive.KindRetransmit, receive.KindRetransmitError,
		receive.KindSessionReset, receive.KindSessionResetReply:
		// Not implemented by either side of the protocol this was
		// modeled on; logged for visibility only.
		logrus.WithFields(logrus.Fields{
			"function": "dispatchOpened",
			"kind":     ev.Kind,
		}).Debug("ignoring unimplemented command")

	case receive.KindUnknown:
		// The protocol prefers tolerance over NAK: an unrecognized command
		// code is ignored rather than rejected.
		logrus.WithFields(logrus.Fields{
			"function": "dispatchOpened",
			"code":     ev.UnknownCode,
		}).Debug("ignoring unknown command")
	}
}

// closeOnPartnerGone reacts to a BYE genuinely received from the session
// partner. A listener always returns to passively waiting for the next
// invitation; an initiator restarts its own invitation only if cfg asks
// for it, otherwise it closes outright and leaves resuming to the host.
func (s *Session) closeOnPartnerGone(cfg Config, onDisconnect DisconnectCallback) {
	switch {
	case !s.isInitiator:
		s.state.Store(int32(StateWaitInvite))
	case cfg.ReinviteOnPeerBye:
		s.state.Store(int32(StateInvite))
		s.sendInvitationNow()
	default:
		s.state.Store(int32(StateClosed))
	}
	if onDisconnect != nil {
		onDisconnect()
	}
}

func (s *Session) handleTimers(cfg Config, onDisconnect DisconnectCallback) {
	switch s.GetSessionStatus() {
	case StateInvite:
		if s.ticks.Since(s.lastInviteMark) >= limits.InviteRetryTicks {
			if err := s.sock.Send(s.wrap(mustEncodeInvitation(cfg))); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "handleTimers",
					"error":    err,
				}).Warn("failed to send INVITATION")
			}
			s.lastInviteMark = s.ticks.Mark()
		}

	case StateOpened:
		if s.ticks.Since(s.lastRecvMark) >= limits.LivenessTimeoutTicks {
			logrus.WithFields(logrus.Fields{
				"function": "handleTimers",
			}).Warn("partner liveness timeout, sending BYE")
			if err := s.sock.Send(s.wrap(wire.EncodeBye(nil, wire.ByeTimeout))); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "handleTimers",
					"error":    err,
				}).Warn("failed to send BYE")
			}
			s.connectionLost.Store(true)
			if s.isInitiator {
				s.state.Store(int32(StateInvite))
				s.sendInvitationNow()
			} else {
				s.state.Store(int32(StateWaitInvite))
			}
			if onDisconnect != nil {
				onDisconnect()
			}
			return
		}

		if dg := s.assembler.Assemble(s.ring); dg != nil {
			if err := s.sock.Send(dg); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "handleTimers",
					"error":    err,
				}).Warn("failed to send UMP-DATA")
			}
			s.lastSendMark = s.ticks.Mark()
			return
		}

		if s.ticks.Since(s.lastSendMark) >= limits.IdlePingThresholdTicks {
			s.pingID++
			if err := s.sock.Send(s.wrap(wire.EncodePing(nil, s.pingID))); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "handleTimers",
					"error":    err,
				}).Warn("failed to send PING")
			}
			s.lastSendMark = s.ticks.Mark()
		}
	}
}

func mustEncodeInvitation(cfg Config) []byte {
	buf, err := wire.EncodeInvitation(nil, 0, cfg.EndpointName, cfg.ProductInstanceID)
	if err != nil {
		// Validated at Session construction and every setter; this can
		// only happen if that validation is bypassed.
		panic(err)
	}
	return buf
}

func mustEncodeInvitationAccepted(cfg Config) []byte {
	buf, err := wire.EncodeInvitationAccepted(nil, cfg.EndpointName, cfg.ProductInstanceID)
	if err != nil {
		panic(err)
	}
	return buf
}

func addrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}
