// Package limits provides centralized size limits for the NetUMP wire
// protocol. This ensures consistent validation across the packet codec,
// the session state machine, and the public API.
package limits
