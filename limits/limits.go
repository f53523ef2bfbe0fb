package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxEndpointNameLen is the NetUMP wire limit for Endpoint Name,
	// including the terminating NUL byte.
	MaxEndpointNameLen = 98

	// MaxProductInstanceIDLen is the NetUMP wire limit for Product
	// Instance ID, including the terminating NUL byte.
	MaxProductInstanceIDLen = 42

	// FIFOCapacity is the fixed capacity, in 32-bit UMP words, of the
	// outbound FIFO between the API caller and the tick worker.
	FIFOCapacity = 1024

	// FECEntries is the number of slots in both the transmit FEC ring
	// (recent sent commands) and the receive FEC ring (recent accepted
	// sequence numbers).
	FECEntries = 5

	// MaxUMPCommandWords is the maximum number of 32-bit words a single
	// UMP-DATA command payload may carry, exclusive of its header word.
	MaxUMPCommandWords = 64

	// MaxUMPCommandBuffer is MaxUMPCommandWords plus the one header word,
	// the largest a single stored FEC-ring entry can be.
	MaxUMPCommandBuffer = MaxUMPCommandWords + 1

	// MaxUMPWordsPerMessage is the largest a single UMP message can be,
	// per the MT-indexed size table (MT 5/13/14/15 are 128-bit messages).
	MaxUMPWordsPerMessage = 4

	// LivenessTimeoutTicks is the number of ticks without traffic from the
	// partner before a session is declared lost.
	LivenessTimeoutTicks = 30000

	// InviteRetryTicks is the number of ticks between invitation retries
	// while in the INVITE state.
	InviteRetryTicks = 1000

	// IdlePingThresholdTicks is the number of ticks of outbound silence
	// before an OPENED session sends an unsolicited PING.
	IdlePingThresholdTicks = 10000

	// CloseFlushDelayMillis is how long CloseSession sleeps after sending
	// BYE, to give the datagram a chance to reach the wire before the
	// socket is torn down.
	CloseFlushDelayMillis = 50

	// DefaultMaxSysexSize is the default cap on a reassembled SYSEX-7
	// message, matching the original transcoder's MAX_SYSEX_SIZE default.
	DefaultMaxSysexSize = 256
)

// ErrTooLong indicates a name or buffer exceeds its limit.
var ErrTooLong = errors.New("limits: value exceeds limit")

// ValidateEndpointName validates an endpoint name against
// MaxEndpointNameLen, accounting for the terminating NUL byte that the
// wire format requires. An empty name is allowed; the wire format sets
// only an upper bound.
func ValidateEndpointName(name string) error {
	if len(name) >= MaxEndpointNameLen {
		return fmt.Errorf("%w: endpoint name length %d exceeds limit %d", ErrTooLong, len(name), MaxEndpointNameLen-1)
	}
	return nil
}

// ValidateProductInstanceID validates a product instance ID against
// MaxProductInstanceIDLen, accounting for the terminating NUL byte. An
// empty ID is allowed; the wire format sets only an upper bound.
func ValidateProductInstanceID(piid string) error {
	if len(piid) >= MaxProductInstanceIDLen {
		return fmt.Errorf("%w: product instance ID length %d exceeds limit %d", ErrTooLong, len(piid), MaxProductInstanceIDLen-1)
	}
	return nil
}

// ValidateUMPCommandWords validates that adding wordCount words to an
// in-progress UMP-DATA command of currentWords words would not exceed
// MaxUMPCommandWords.
func ValidateUMPCommandWords(currentWords, wordCount int) bool {
	return currentWords+wordCount <= MaxUMPCommandWords
}
