// Package fec implements NetUMP's forward error correction scheme, which
// is plain replay rather than any coded redundancy: the transmit side
// piggybacks copies of its last few sent UMP-DATA commands onto each new
// datagram, and the receive side remembers the last few sequence numbers
// it has accepted so a replayed command is silently dropped instead of
// being delivered twice.
package fec
