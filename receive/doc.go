// Package receive parses an incoming NetUMP datagram into a sequence of
// typed events, one per stacked command, applying FEC deduplication to
// UMP-DATA commands along the way. It never touches session state itself;
// the session state machine consumes the events it returns and decides
// what to do with each one.
package receive
