// Package transcoder converts between classic MIDI 1.0 byte streams and
// MIDI 2.0 Universal MIDI Packets. Channel voice and system messages are
// stateless one-word conversions; SysEx7 is the one stateful case, since a
// single MIDI 1.0 SysEx message (F0 ... F7) may span several 2-word UMP
// SysEx7 packets and a single UMP stream may deliver those packets across
// more than one Tick.
package transcoder
