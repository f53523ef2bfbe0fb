package transcoder

import (
	"bytes"
	"testing"
)

func TestChannelVoiceRoundTrip(t *testing.T) {
	word := ChannelVoiceToUMP(0, 0x91, 0x3C, 0x7F)
	group, status, d1, d2, err := UMPToChannelVoice(word)
	if err != nil {
		t.Fatalf("UMPToChannelVoice: %v", err)
	}
	if group != 0 || status != 0x91 || d1 != 0x3C || d2 != 0x7F {
		t.Errorf("round trip = (%d, %#x, %#x, %#x), want (0, 0x91, 0x3c, 0x7f)", group, status, d1, d2)
	}
}

func TestMIDI1ToUMPChannelVoice(t *testing.T) {
	words, err := MIDI1ToUMP(2, []byte{0x90, 0x40, 0x60})
	if err != nil {
		t.Fatalf("MIDI1ToUMP: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1", len(words))
	}
	want := ChannelVoiceToUMP(2, 0x90, 0x40, 0x60)
	if words[0] != want {
		t.Errorf("word = %#x, want %#x", words[0], want)
	}
}

func TestMIDI1ToUMPProgramChangeOneDataByte(t *testing.T) {
	words, err := MIDI1ToUMP(0, []byte{0xC3, 0x05})
	if err != nil {
		t.Fatalf("MIDI1ToUMP: %v", err)
	}
	back, err := UMPToMIDI1(words[0])
	if err != nil {
		t.Fatalf("UMPToMIDI1: %v", err)
	}
	if !bytes.Equal(back, []byte{0xC3, 0x05}) {
		t.Errorf("round trip = %v, want [0xc3 0x05]", back)
	}
}

func TestShortSysExSinglePacket(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	msg := append([]byte{0xF0}, append(append([]byte{}, payload...), 0xF7)...)

	words, err := MIDI1ToUMP(1, msg)
	if err != nil {
		t.Fatalf("MIDI1ToUMP: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("short SysEx should produce exactly one 2-word packet, got %d words", len(words))
	}

	r := NewReassembler(0)
	out, err := r.Feed(words[0], words[1])
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !bytes.Equal(out, msg) {
		t.Errorf("reassembled = %v, want %v", out, msg)
	}
}

func TestLongSysExMultiPacketRoundTrip(t *testing.T) {
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	msg := append([]byte{0xF0}, append(append([]byte{}, payload...), 0xF7)...)

	words, err := MIDI1ToUMP(5, msg)
	if err != nil {
		t.Fatalf("MIDI1ToUMP: %v", err)
	}
	if len(words)%2 != 0 {
		t.Fatalf("expected an even number of words (2 per packet), got %d", len(words))
	}

	r := NewReassembler(0)
	var out []byte
	for i := 0; i < len(words); i += 2 {
		got, err := r.Feed(words[i], words[i+1])
		if err != nil {
			t.Fatalf("Feed packet %d: %v", i/2, err)
		}
		if got != nil {
			out = got
		}
	}
	if !bytes.Equal(out, msg) {
		t.Errorf("reassembled = %v, want %v", out, msg)
	}
}

func TestSysExMissingTerminatorRejected(t *testing.T) {
	if _, err := MIDI1ToUMP(0, []byte{0xF0, 0x01, 0x02}); err != ErrUnterminatedSysEx {
		t.Errorf("MIDI1ToUMP on unterminated SysEx = %v, want ErrUnterminatedSysEx", err)
	}
}

func TestReassemblerOverflowRejected(t *testing.T) {
	r := NewReassembler(10)
	startWord0 := uint32(mtSysEx7)<<28 | uint32(sysexStart)<<20 | uint32(6)<<16
	if _, err := r.Feed(startWord0, 0); err != nil {
		t.Fatalf("Feed(start): %v", err)
	}
	continueWord0 := uint32(mtSysEx7)<<28 | uint32(sysexContinue)<<20 | uint32(6)<<16
	if _, err := r.Feed(continueWord0, 0); err == nil {
		t.Errorf("Feed should reject a continuation that pushes the payload past the configured max")
	}
}

func TestReassemblerUnexpectedContinuationRejected(t *testing.T) {
	r := NewReassembler(0)
	endWord0 := uint32(mtSysEx7)<<28 | uint32(sysexEnd)<<20 | uint32(2)<<16
	if _, err := r.Feed(endWord0, 0); err != ErrUnexpectedContinuation {
		t.Errorf("Feed(end) with no Start in progress = %v, want ErrUnexpectedContinuation", err)
	}
}

func TestSystemRealTimeRoundTrip(t *testing.T) {
	words, err := MIDI1ToUMP(0, []byte{0xFA})
	if err != nil {
		t.Fatalf("MIDI1ToUMP: %v", err)
	}
	back, err := UMPToMIDI1(words[0])
	if err != nil {
		t.Fatalf("UMPToMIDI1: %v", err)
	}
	if !bytes.Equal(back, []byte{0xFA}) {
		t.Errorf("round trip = %v, want [0xfa]", back)
	}
}
