package receive

import (
	"errors"
	"fmt"

	"github.com/kissbox/netump/fec"
	"github.com/kissbox/netump/ump"
	"github.com/kissbox/netump/wire"
)

// Kind identifies what a decoded Event represents.
type Kind int

const (
	KindInvitation Kind = iota
	KindInvitationAccepted
	KindBye
	KindByeReply
	KindPing
	KindPingReply
	KindUMPData
	KindNAK
	KindRetransmit
	KindRetransmitError
	KindSessionReset
	KindSessionResetReply
	KindUnknown
)

// Event is one decoded stacked command from an incoming datagram.
type Event struct {
	Kind Kind

	Invitation wire.InvitationPacket

	ByeReason wire.ByeReason

	PingID uint32

	// Sequence and Messages are populated for KindUMPData. Dropped is true
	// when Sequence had already been accepted (an FEC replay of an
	// already-delivered command), in which case Messages is nil.
	Sequence uint16
	Messages [][]uint32
	Dropped  bool

	NAKReason      wire.NAKReason
	RejectedHeader uint32

	// UnknownCode and RawHeader are populated for KindUnknown.
	UnknownCode wire.CommandCode
	RawHeader   uint32
}

// ErrBadSignature is returned when a datagram does not open with the
// NetUMP signature.
var ErrBadSignature = errors.New("receive: datagram missing NetUMP signature")

// Dispatcher decodes datagrams, deduplicating UMP-DATA commands against
// its Dedup ring as it goes.
type Dispatcher struct {
	dedup *fec.Dedup
}

// NewDispatcher returns a Dispatcher that deduplicates UMP-DATA sequence
// numbers using dedup.
func NewDispatcher(dedup *fec.Dedup) *Dispatcher {
	return &Dispatcher{dedup: dedup}
}

// Parse decodes every stacked command in buf, in order. It returns as
// many Events as it could decode even if a later command is malformed;
// the returned error, if any, describes the first decode failure and
// Events reflects everything successfully parsed before it.
func (d *Dispatcher) Parse(buf []byte) ([]Event, error) {
	if !wire.CheckSignature(buf) {
		return nil, ErrBadSignature
	}
	offset := wire.HeaderLen
	var events []Event

	for offset+wire.CommandLen <= len(buf) {
		h, err := wire.ParseHeader(buf[offset:])
		if err != nil {
			return events, err
		}

		switch h.Code {
		case wire.CmdInvitation:
			pkt, n, err := wire.DecodeInvitation(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindInvitation, Invitation: pkt})
			offset += n

		case wire.CmdInvitationAccepted:
			pkt, n, err := wire.DecodeInvitationAccepted(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindInvitationAccepted, Invitation: pkt})
			offset += n

		case wire.CmdBye:
			reason, n, err := wire.DecodeBye(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindBye, ByeReason: reason})
			offset += n

		case wire.CmdByeReply:
			n, err := wire.DecodeByeReply(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindByeReply})
			offset += n

		case wire.CmdPing:
			id, n, err := wire.DecodePing(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindPing, PingID: id})
			offset += n

		case wire.CmdPingReply:
			id, n, err := wire.DecodePingReply(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindPingReply, PingID: id})
			offset += n

		case wire.CmdNAK:
			reason, header, n, err := wire.DecodeNAK(buf[offset:])
			if err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindNAK, NAKReason: reason, RejectedHeader: header})
			offset += n

		case wire.CmdRetransmit, wire.CmdRetransmitError:
			// Not implemented by either side of the original protocol;
			// surfaced as an event so callers can log it, not acted on.
			kind := KindRetransmit
			if h.Code == wire.CmdRetransmitError {
				kind = KindRetransmitError
			}
			events = append(events, Event{Kind: kind})
			offset += wire.CommandLen + h.PayloadWords*4

		case wire.CmdSessionReset:
			if _, err := wire.DecodeSessionReset(buf[offset:]); err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindSessionReset})
			offset += wire.CommandLen

		case wire.CmdSessionResetReply:
			if _, err := wire.DecodeSessionResetReply(buf[offset:]); err != nil {
				return events, err
			}
			events = append(events, Event{Kind: KindSessionResetReply})
			offset += wire.CommandLen

		case wire.CmdUMPData:
			wordCount, seq, err := wire.DecodeUMPDataHeader(buf[offset:])
			if err != nil {
				return events, err
			}
			payloadStart := offset + wire.CommandLen
			payloadEnd := payloadStart + wordCount*4
			if payloadEnd > len(buf) {
				return events, fmt.Errorf("receive: UMP-DATA payload truncated")
			}

			ev := Event{Kind: KindUMPData, Sequence: seq}
			if d.dedup.Seen(seq) {
				ev.Dropped = true
			} else {
				d.dedup.Accept(seq)
				ev.Messages = decodeUMPMessages(buf[payloadStart:payloadEnd], wordCount)
			}
			events = append(events, ev)
			offset = payloadEnd

		default:
			rawHeader := uint32(h.Code)<<24 | uint32(h.PayloadWords)<<16 | uint32(h.B2)<<8 | uint32(h.B3)
			events = append(events, Event{Kind: KindUnknown, UnknownCode: h.Code, RawHeader: rawHeader})
			offset += wire.CommandLen + h.PayloadWords*4
		}
	}

	return events, nil
}

// decodeUMPMessages splits a UMP-DATA payload of wordCount 32-bit words
// into the individual variable-length UMP messages it contains, each
// sized by its own Message Type field. A command whose declared
// wordCount cuts a message short, so its last message claims more words
// than remain, is truncated: the dangling partial message is dropped
// rather than decoded past the available words.
func decodeUMPMessages(payload []byte, wordCount int) [][]uint32 {
	var messages [][]uint32
	offset := 0
	for offset < wordCount {
		firstWord := be32(payload[offset*4:])
		need := ump.WordCount(firstWord)
		if offset+need > wordCount {
			break
		}
		rest := make([]uint32, need)
		got := ump.Decode(payload[offset*4:], rest)
		messages = append(messages, rest[:got])
		offset += got
	}
	return messages
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
