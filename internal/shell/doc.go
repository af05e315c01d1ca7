// Package shell runs the ascsh read-classify-dispatch loop.
//
// The Interpreter reads one line at a time from a LineReader, classifies it as
// a command, and turns it into a call on the daemon connection. Before every
// read it checks the connection state and leaves the loop once the session is
// disconnected or failed. Terminal and pipe input are handled by
// TerminalReader and ScannerReader respectively.
package shell
