package transcoder

import "fmt"

// DefaultMaxSysExSize is the default cap on a reassembled SysEx payload,
// matching the original transcoder's buffer size.
const DefaultMaxSysExSize = 256

// Reassembler rebuilds a MIDI 1.0 SysEx message from a sequence of MT-3
// UMP SysEx7 packets. It is the one stateful piece of this package: a
// Start packet opens a message, Continue packets extend it, and an End
// (or a standalone Complete) packet closes it.
type Reassembler struct {
	started bool
	buf     []byte
	max     int
}

// NewReassembler returns a Reassembler that rejects any payload growing
// past maxSize bytes. maxSize <= 0 selects DefaultMaxSysExSize.
func NewReassembler(maxSize int) *Reassembler {
	if maxSize <= 0 {
		maxSize = DefaultMaxSysExSize
	}
	return &Reassembler{max: maxSize}
}

// Reset discards any in-progress message. Feed also calls it after an
// End packet and after rejecting an oversized message.
func (r *Reassembler) Reset() {
	r.started = false
	r.buf = r.buf[:0]
}

// ErrSysExOverflow is returned when a reassembled SysEx payload would
// exceed the Reassembler's configured maximum size.
type ErrSysExOverflow struct{ Max int }

func (e *ErrSysExOverflow) Error() string {
	return fmt.Sprintf("transcoder: reassembled SysEx exceeds %d bytes", e.Max)
}

// ErrUnexpectedContinuation is returned when a Continue or End packet
// arrives with no Start packet in progress.
var ErrUnexpectedContinuation = fmt.Errorf("transcoder: SysEx continuation packet with no message in progress")

// Feed processes one MT-3 SysEx7 UMP packet (its two words). When the
// packet completes a message, Feed returns the full MIDI 1.0 SysEx byte
// sequence including the leading F0 and trailing F7. Otherwise it returns
// nil, nil and the Reassembler keeps accumulating.
func (r *Reassembler) Feed(w0, w1 uint32) ([]byte, error) {
	if int(w0>>28) != mtSysEx7 {
		return nil, fmt.Errorf("transcoder: UMP word is not a SysEx7 message")
	}
	status := int(w0>>20) & 0xF
	n := int(w0>>16) & 0xF

	var chunk [6]byte
	chunk[0] = byte(w0 >> 8)
	chunk[1] = byte(w0)
	chunk[2] = byte(w1 >> 24)
	chunk[3] = byte(w1 >> 16)
	chunk[4] = byte(w1 >> 8)
	chunk[5] = byte(w1)
	data := chunk[:n]

	switch status {
	case sysexComplete:
		out := make([]byte, 0, n+2)
		out = append(out, 0xF0)
		out = append(out, data...)
		out = append(out, 0xF7)
		return out, nil

	case sysexStart:
		r.buf = append(r.buf[:0], data...)
		r.started = true
		return nil, nil

	case sysexContinue:
		if !r.started {
			return nil, ErrUnexpectedContinuation
		}
		if len(r.buf)+n > r.max {
			r.Reset()
			return nil, &ErrSysExOverflow{Max: r.max}
		}
		r.buf = append(r.buf, data...)
		return nil, nil

	case sysexEnd:
		if !r.started {
			return nil, ErrUnexpectedContinuation
		}
		if len(r.buf)+n > r.max {
			r.Reset()
			return nil, &ErrSysExOverflow{Max: r.max}
		}
		r.buf = append(r.buf, data...)
		out := make([]byte, 0, len(r.buf)+2)
		out = append(out, 0xF0)
		out = append(out, r.buf...)
		out = append(out, 0xF7)
		r.Reset()
		return out, nil

	default:
		return nil, fmt.Errorf("transcoder: unknown SysEx7 status nibble %d", status)
	}
}

// UMPToMIDI1 converts a non-SysEx UMP word (MT-1 system or MT-2 channel
// voice) back into its MIDI 1.0 byte form. SysEx7 packets must go through
// a Reassembler instead, since they may span multiple words over multiple
// calls.
func UMPToMIDI1(word uint32) ([]byte, error) {
	switch int(word >> 28) {
	case mtChannelVoice:
		_, status, d1, d2, err := UMPToChannelVoice(word)
		if err != nil {
			return nil, err
		}
		if channelVoiceDataBytes(status) == 1 {
			return []byte{status, d1}, nil
		}
		return []byte{status, d1, d2}, nil

	case mtSystem:
		_, status, d1, d2, err := UMPToSystem(word)
		if err != nil {
			return nil, err
		}
		switch {
		case status >= 0xF8:
			return []byte{status}, nil
		case status == 0xF1 || status == 0xF3:
			return []byte{status, d1}, nil
		case status == 0xF2:
			return []byte{status, d1, d2}, nil
		default:
			return []byte{status}, nil
		}

	default:
		return nil, fmt.Errorf("transcoder: UMP word with MT %d has no MIDI 1.0 equivalent here", word>>28)
	}
}
