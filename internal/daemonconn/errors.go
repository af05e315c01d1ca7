package daemonconn

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an operation needs a live session.
var ErrNotConnected = errors.New("not connected to daemon")

// ErrInvalidProgram wraps program validation failures. No daemon I/O happens.
var ErrInvalidProgram = errors.New("invalid program name")

// ConnectError reports a failed dial.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TransportError reports an I/O or protocol failure during Op. The
// connection that produced it is FAILED.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
