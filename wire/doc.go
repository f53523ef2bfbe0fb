// Package wire implements the NetUMP wire format: the 4-byte signature that
// opens every datagram, the 4-byte command header that opens every stacked
// protocol packet within it, and per-command encode/decode for INVITATION,
// INVITATION_ACCEPTED, BYE, BYE_REPLY, PING, PING_REPLY, SESSION_RESET,
// SESSION_RESET_REPLY, NAK and UMP_DATA. The other command codes are
// named but have no encoder or decoder.
//
// All multi-byte scalars are network (big-endian) byte order. A single UDP
// datagram carries one signature followed by one or more stacked command
// blocks; each block is [code(1)][payload-length-in-words(1)][2
// command-specific bytes][payload words...].
package wire
