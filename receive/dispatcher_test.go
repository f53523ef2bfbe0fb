package receive

import (
	"testing"

	"github.com/kissbox/netump/fec"
	"github.com/kissbox/netump/ump"
	"github.com/kissbox/netump/wire"
)

func buildDatagram(commands ...[]byte) []byte {
	buf := make([]byte, wire.HeaderLen)
	wire.PutSignature(buf)
	for _, c := range commands {
		buf = append(buf, c...)
	}
	return buf
}

func TestParseInvitationAndBye(t *testing.T) {
	invite, err := wire.EncodeInvitation(nil, 0, "Acme", "SN-1")
	if err != nil {
		t.Fatalf("EncodeInvitation: %v", err)
	}
	bye := wire.EncodeBye(nil, wire.ByeUserTerminatedSession)
	datagram := buildDatagram(invite, bye)

	d := NewDispatcher(fec.NewDedup(5))
	events, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != KindInvitation || events[0].Invitation.EndpointName != "Acme" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Kind != KindBye || events[1].ByeReason != wire.ByeUserTerminatedSession {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	d := NewDispatcher(fec.NewDedup(5))
	if _, err := d.Parse([]byte{0, 0, 0, 0}); err != ErrBadSignature {
		t.Errorf("Parse with bad signature = %v, want ErrBadSignature", err)
	}
}

func TestParseUMPDataDecodesEmbeddedMessages(t *testing.T) {
	// Two 1-word MT-2 channel-voice messages packed into one UMP-DATA
	// command's payload.
	msg1 := uint32(0x20901234)
	msg2 := uint32(0x20805678)
	payload := make([]byte, 8)
	ump.Encode(payload, []uint32{msg1})
	ump.Encode(payload[4:], []uint32{msg2})

	header := wire.EncodeUMPDataHeader(nil, 2, 100)
	datagram := buildDatagram(append(header, payload...))

	d := NewDispatcher(fec.NewDedup(5))
	events, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 || events[0].Kind != KindUMPData {
		t.Fatalf("events = %+v", events)
	}
	if len(events[0].Messages) != 2 {
		t.Fatalf("got %d decoded messages, want 2", len(events[0].Messages))
	}
	if events[0].Messages[0][0] != msg1 || events[0].Messages[1][0] != msg2 {
		t.Errorf("decoded messages = %#x, want [%#x %#x]", events[0].Messages, msg1, msg2)
	}
}

func TestParseDropsReplayedSequence(t *testing.T) {
	payload := make([]byte, 4)
	ump.Encode(payload, []uint32{0x20901234})
	header := wire.EncodeUMPDataHeader(nil, 1, 7)
	datagram := buildDatagram(append(header, payload...))

	d := NewDispatcher(fec.NewDedup(5))
	events1, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse (first): %v", err)
	}
	if events1[0].Dropped {
		t.Fatalf("first delivery of sequence 7 should not be dropped")
	}

	events2, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse (replay): %v", err)
	}
	if !events2[0].Dropped {
		t.Errorf("replayed sequence 7 should be dropped")
	}
	if events2[0].Messages != nil {
		t.Errorf("dropped event should carry no decoded messages, got %v", events2[0].Messages)
	}
}

func TestParseUMPDataTruncatesDanglingMessageWithoutPanic(t *testing.T) {
	// A 1-word MT-2 message followed by a 3-word MT-0xB message, but the
	// command's declared wordCount (2) only covers the first message plus
	// one stray word of the second, one short of the 3 it needs.
	payload := make([]byte, 16)
	ump.Encode(payload, []uint32{0x20901234})
	ump.Encode(payload[4:], []uint32{0xB0000000, 0, 0})

	header := wire.EncodeUMPDataHeader(nil, 2, 42)
	datagram := buildDatagram(append(header, payload[:8]...))

	d := NewDispatcher(fec.NewDedup(5))
	events, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 || events[0].Kind != KindUMPData {
		t.Fatalf("events = %+v", events)
	}
	if len(events[0].Messages) != 1 || events[0].Messages[0][0] != 0x20901234 {
		t.Errorf("decoded messages = %#x, want only the complete first message", events[0].Messages)
	}
}

func TestParseUnknownCommandSurfaced(t *testing.T) {
	datagram := buildDatagram([]byte{0x7A, 0x00, 0x00, 0x00})
	d := NewDispatcher(fec.NewDedup(5))
	events, err := d.Parse(datagram)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 || events[0].Kind != KindUnknown || events[0].UnknownCode != 0x7A {
		t.Errorf("events = %+v", events)
	}
}
