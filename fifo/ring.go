package fifo

import "sync/atomic"

// Ring is a fixed-capacity SPSC queue of 32-bit words. One slot is always
// left empty to distinguish the full and empty states without a separate
// counter, so a Ring of capacity n holds at most n-1 words.
type Ring struct {
	buf   []uint32
	write atomic.Uint32
	read  atomic.Uint32
}

// NewRing returns a Ring that can hold up to capacity-1 words.
func NewRing(capacity int) *Ring {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring{buf: make([]uint32, capacity)}
}

// Len returns the number of words currently queued. Safe to call from
// either the producer or the consumer.
func (r *Ring) Len() int {
	n := uint32(len(r.buf))
	w := r.write.Load()
	rd := r.read.Load()
	return int((w - rd + n) % n)
}

// Free returns the number of additional words that can be pushed before
// the ring reports full.
func (r *Ring) Free() int {
	return len(r.buf) - 1 - r.Len()
}

// IsEmpty reports whether the ring currently holds no words.
func (r *Ring) IsEmpty() bool {
	return r.read.Load() == r.write.Load()
}

// IsFull reports whether the ring has no room for another word.
func (r *Ring) IsFull() bool {
	return r.Free() == 0
}

// Push copies words into the ring and atomically publishes the new write
// cursor only once every word has been copied, so a concurrent consumer
// never observes a partially written message. It returns false, leaving
// the ring unchanged, if there is not room for the whole message.
func (r *Ring) Push(words []uint32) bool {
	if len(words) == 0 {
		return true
	}
	if len(words) > r.Free() {
		return false
	}
	n := uint32(len(r.buf))
	w := r.write.Load()
	for _, word := range words {
		r.buf[w] = word
		w = (w + 1) % n
	}
	r.write.Store(w)
	return true
}

// Pop drains up to len(dst) queued words into dst, returning the number
// copied. Only the consumer goroutine may call Pop.
func (r *Ring) Pop(dst []uint32) int {
	n := r.Peek(dst)
	r.Advance(n)
	return n
}

// Peek copies up to len(dst) queued words into dst without consuming them,
// returning the number copied. Only the consumer goroutine may call Peek.
func (r *Ring) Peek(dst []uint32) int {
	n := uint32(len(r.buf))
	rd := r.read.Load()
	w := r.write.Load()
	avail := int((w - rd + n) % n)
	count := len(dst)
	if count > avail {
		count = avail
	}
	for i := 0; i < count; i++ {
		dst[i] = r.buf[rd]
		rd = (rd + 1) % n
	}
	return count
}

// Advance consumes the first n words without copying them out, for use
// after Peek has inspected them. n must not exceed Len(). Only the
// consumer goroutine may call Advance.
func (r *Ring) Advance(n int) {
	cnt := uint32(len(r.buf))
	rd := r.read.Load()
	rd = (rd + uint32(n)) % cnt
	r.read.Store(rd)
}
