// Package daemonconn owns the shell's single session with the ascd daemon.
//
// A Connection moves through a small state machine: it starts CONNECTED (or
// FAILED when the dial does not succeed) and ends in exactly one of the
// terminal states DISCONNECTED or FAILED. The transport handle is touched only
// while CONNECTED and is released exactly once, on the first of a successful
// disconnect or a transport failure. Every transport failure is recorded as the
// connection's last error so callers can report the diagnostic.
//
// Tests substitute the daemon boundary through the Transport interface and
// WithDialer.
package daemonconn
