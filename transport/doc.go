// Package transport wraps a UDP socket for the tick-driven polling style
// the session state machine needs: a single Tick call must be able to ask
// "is a datagram waiting right now?" without blocking, since it owns no
// goroutine of its own.
package transport
