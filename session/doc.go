// Package session implements the NetUMP session state machine: the
// invitation handshake, liveness and idle-ping timers, and dispatch of
// decoded commands to transmit/receive behavior. It is cooperative and
// single-threaded by contract — Tick, InitiateSession, CloseSession, and
// RestartInitiator must all be called from the same goroutine. SendUMP
// and the Set*/Get* accessors are the only operations safe to call from
// another goroutine concurrently with Tick.
package session
