package fec

// emptySlot is the sentinel value marking a Dedup ring slot that has
// never accepted a sequence number.
const emptySlot uint16 = 0xFFFF

// Dedup is the receive-side FEC ring: it remembers the last few UMP-DATA
// sequence numbers that were accepted so a piggybacked replay of an
// already-delivered command can be recognized and dropped, giving the
// protocol at-most-once delivery despite the transmit side resending
// commands it has no acknowledgement for.
type Dedup struct {
	seen   []uint16
	filled []bool
	next   int
}

// NewDedup returns a Dedup remembering the last size accepted sequence
// numbers.
func NewDedup(size int) *Dedup {
	if size < 1 {
		size = 1
	}
	d := &Dedup{
		seen:   make([]uint16, size),
		filled: make([]bool, size),
	}
	d.Reset()
	return d
}

// Reset clears the ring back to its empty state, as happens whenever a
// session (re)opens. Slots are seeded with emptySlot for parity with the
// original implementation's sentinel, though filled also guards against
// a genuine sequence number of 0xFFFF colliding with it.
func (d *Dedup) Reset() {
	for i := range d.seen {
		d.seen[i] = emptySlot
		d.filled[i] = false
	}
	d.next = 0
}

// Seen reports whether seq has already been accepted and is therefore a
// duplicate that should be dropped rather than delivered.
func (d *Dedup) Seen(seq uint16) bool {
	for i, s := range d.seen {
		if d.filled[i] && s == seq {
			return true
		}
	}
	return false
}

// Accept records seq as newly accepted, evicting the oldest remembered
// sequence number if the ring is full.
func (d *Dedup) Accept(seq uint16) {
	d.seen[d.next] = seq
	d.filled[d.next] = true
	d.next = (d.next + 1) % len(d.seen)
}
