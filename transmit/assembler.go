package transmit

import (
	"github.com/kissbox/netump/fec"
	"github.com/kissbox/netump/fifo"
	"github.com/kissbox/netump/limits"
	"github.com/kissbox/netump/ump"
	"github.com/kissbox/netump/wire"
)

// Assembler turns queued FIFO words into complete, FEC-redundant
// datagrams. It owns the outbound sequence counter and the FEC replay
// window, both of which must be wiped whenever a session (re)opens.
type Assembler struct {
	window       *fec.Window
	seq          uint16
	errorCorrect bool
}

// NewAssembler returns an Assembler that piggybacks replay redundancy
// from window onto every datagram it builds, when error correction is
// enabled.
func NewAssembler(window *fec.Window) *Assembler {
	return &Assembler{window: window, errorCorrect: true}
}

// SetErrorCorrection enables or disables the FEC replay tail. Disabling
// it still records sent commands into the window (so re-enabling it mid
// session immediately has history to draw from) but stops attaching that
// history to outgoing datagrams.
func (a *Assembler) SetErrorCorrection(enabled bool) {
	a.errorCorrect = enabled
}

// Reset zeroes the sequence counter and wipes the FEC window, as happens
// whenever a session (re)opens.
func (a *Assembler) Reset() {
	a.seq = 0
	a.window.Reset()
}

// Assemble drains as many complete UMP messages as fit within one
// UMP-DATA command (at most limits.MaxUMPCommandWords words) from ring and
// returns a complete datagram ready to send: signature, the FEC replay
// tail oldest-first, and the new UMP-DATA command last. It returns nil if
// ring had nothing queued.
//
// The read index only advances over whole messages: it peeks each
// message's word count from the UMP Message Type table before committing
// to include it, so a message that would overflow the 64-word cap is left
// in the ring for the next call rather than split across two commands.
func (a *Assembler) Assemble(ring *fifo.Ring) []byte {
	peeked := make([]uint32, limits.MaxUMPCommandWords)
	avail := ring.Peek(peeked)
	if avail == 0 {
		return nil
	}
	peeked = peeked[:avail]

	n := 0
	for n < avail {
		need := ump.WordCount(peeked[n])
		if n+need > limits.MaxUMPCommandWords || n+need > avail {
			break
		}
		n += need
	}
	if n == 0 {
		return nil
	}
	ring.Advance(n)
	words := peeked[:n]

	seq := a.seq
	a.seq++

	payload := make([]byte, n*4)
	for i, w := range words {
		payload[i*4+0] = byte(w >> 24)
		payload[i*4+1] = byte(w >> 16)
		payload[i*4+2] = byte(w >> 8)
		payload[i*4+3] = byte(w)
	}

	header := wire.EncodeUMPDataHeader(nil, n, seq)
	primary := append(header, payload...)
	a.window.Push(primary)

	sig := make([]byte, wire.HeaderLen)
	wire.PutSignature(sig)

	datagram := make([]byte, 0, len(sig)+len(primary))
	datagram = append(datagram, sig...)
	if a.errorCorrect {
		for _, cmd := range a.window.History() {
			datagram = append(datagram, cmd...)
		}
	}
	datagram = append(datagram, primary...)
	return datagram
}
