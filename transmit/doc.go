// Package transmit assembles outbound UMP-DATA datagrams: it drains
// queued words from the outbound FIFO, frames them as one UMP-DATA
// command, records that command in the FEC replay window, and appends the
// window's replay tail so the datagram carries both the new command and
// redundant copies of the last few already-sent ones.
package transmit
