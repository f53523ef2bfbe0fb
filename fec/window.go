package fec

// Window is the transmit-side FEC ring: it remembers the last few raw
// UMP-DATA command blocks (header plus payload) that were sent, in the
// order they were sent, so they can be piggybacked onto the next
// outgoing datagram as replay redundancy. A partner that missed one
// datagram can still recover the command from the next one.
type Window struct {
	slots  [][]byte
	filled []bool
	next   int
}

// NewWindow returns a Window holding up to size most-recently-sent
// commands.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{
		slots:  make([][]byte, size),
		filled: make([]bool, size),
	}
}

// Reset wipes the window, as happens whenever a session (re)opens so that
// stale commands from a previous session are never replayed into a new
// one.
func (w *Window) Reset() {
	for i := range w.slots {
		w.slots[i] = nil
		w.filled[i] = false
	}
	w.next = 0
}

// Push records cmd as the most recently sent command, evicting the oldest
// entry if the window is full. cmd is copied; the caller's buffer may be
// reused afterward.
func (w *Window) Push(cmd []byte) {
	stored := make([]byte, len(cmd))
	copy(stored, cmd)
	w.slots[w.next] = stored
	w.filled[w.next] = true
	w.next = (w.next + 1) % len(w.slots)
}

// History returns the window's filled entries ordered oldest first,
// excluding the entry most recently pushed (the caller already has that
// one as its primary command and only needs the replay tail).
func (w *Window) History() [][]byte {
	n := len(w.slots)
	out := make([][]byte, 0, n)
	// w.next is the slot the *next* push will overwrite, i.e. the oldest
	// entry currently stored (or the first empty slot, during warm-up).
	for i := 0; i < n; i++ {
		idx := (w.next + i) % n
		if w.filled[idx] {
			out = append(out, w.slots[idx])
		}
	}
	if len(out) > 0 {
		// Drop the newest entry, which sits last in oldest-first order
		// and duplicates the command the caller is sending as primary.
		out = out[:len(out)-1]
	}
	return out
}
