package netump

import (
	"errors"

	"github.com/kissbox/netump/session"
)

// ErrSocketCreate indicates the UDP socket could not be bound.
var ErrSocketCreate = errors.New("netump: could not create UDP socket")

// Re-exported for convenience, since callers handling errors from
// Endpoint methods shouldn't need to import the session package directly.
var (
	ErrNotOpened      = session.ErrNotOpened
	ErrFIFOFull       = session.ErrFIFOFull
	ErrAlreadyStarted = session.ErrAlreadyStarted
	ErrNoPeer         = session.ErrNoPeer
)
