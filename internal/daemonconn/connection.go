package daemonconn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ascsh/internal/ipc"
	"ascsh/internal/logging"
)

// Status is the lifecycle state of a Connection.
type Status int

const (
	StatusConnected Status = iota
	StatusDisconnected
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Transport is the daemon side of a session.
type Transport interface {
	Quit(ctx context.Context) error
	Query(ctx context.Context, program ipc.Program) (*ipc.LearningData, error)
	// Close performs the disconnect handshake and releases the handle.
	Close(ctx context.Context) error
	// Abort releases the handle without talking to the daemon.
	Abort() error
}

// Dialer opens a Transport to the daemon listening at path.
type Dialer func(ctx context.Context, path string) (Transport, error)

// Option customizes Connect.
type Option func(*options)

type options struct {
	dialer         Dialer
	logger         *slog.Logger
	sessionID      string
	dialTimeout    time.Duration
	requestTimeout time.Duration
}

// WithDialer replaces the JSON-RPC dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSessionID fixes the session identifier instead of generating one.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}

// WithDialTimeout bounds the socket dial of the default dialer.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithRequestTimeout bounds each request of the default dialer. Zero waits forever.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// IPCDialer returns a Dialer speaking the JSON-RPC protocol.
func IPCDialer(dialTimeout, requestTimeout time.Duration, sessionID string) Dialer {
	return func(ctx context.Context, path string) (Transport, error) {
		client, err := ipc.Dial(ctx, path, dialTimeout)
		if err != nil {
			return nil, err
		}
		client.SetSessionID(sessionID)
		client.SetRequestTimeout(requestTimeout)
		return client, nil
	}
}

// Connection is the shell's session with the daemon. It is not safe for
// concurrent use; the interpreter loop is its only user.
type Connection struct {
	path      string
	sessionID string
	status    Status
	transport Transport
	err       error
	logger    *slog.Logger
}

// Connect dials the daemon at path. The returned Connection is never nil: on
// failure it is FAILED, its Err holds the dial diagnostic, and the returned
// error is a *ConnectError.
func Connect(ctx context.Context, path string, opts ...Option) (*Connection, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}
	if o.dialer == nil {
		o.dialer = IPCDialer(o.dialTimeout, o.requestTimeout, o.sessionID)
	}

	logger := logging.NewComponentLogger(o.logger, "daemonconn").With(
		logging.String(logging.FieldSocket, path),
	)
	conn := &Connection{
		path:      path,
		sessionID: o.sessionID,
		logger:    logger,
	}

	start := time.Now()
	transport, err := o.dialer(ctx, path)
	if err == nil && transport == nil {
		err = fmt.Errorf("dialer returned no transport")
	}
	if err != nil {
		conn.status = StatusFailed
		conn.err = err
		logging.WarnWithContext(logger, "daemon connect failed", "daemon_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ascd is running and the socket path is correct"),
			logging.String(logging.FieldImpact, "shell cannot issue commands"))
		return conn, &ConnectError{Path: path, Err: err}
	}

	conn.status = StatusConnected
	conn.transport = transport
	logger.Info("daemon connected",
		logging.String(logging.FieldEventType, "daemon_connected"),
		logging.Duration("elapsed", time.Since(start)))
	return conn, nil
}

// Status reports the lifecycle state.
func (c *Connection) Status() Status { return c.status }

// Err returns the diagnostic recorded by the last failure.
func (c *Connection) Err() error { return c.err }

// Path returns the daemon socket path.
func (c *Connection) Path() string { return c.path }

// SessionID returns the identifier attached to every request.
func (c *Connection) SessionID() string { return c.sessionID }

// Usable reports whether requests may be issued.
func (c *Connection) Usable() bool { return c.status == StatusConnected }

// IssueQuit asks the daemon to shut down. The local session stays open.
func (c *Connection) IssueQuit(ctx context.Context) error {
	if !c.Usable() {
		return ErrNotConnected
	}
	if err := c.transport.Quit(ctx); err != nil {
		return c.fail("quit", err)
	}
	c.logger.Info("daemon quit requested", logging.String(logging.FieldEventType, "daemon_quit_sent"))
	return nil
}

// Query looks up learning data for program. A nil result with a nil error
// means the daemon has no data for it.
func (c *Connection) Query(ctx context.Context, program ipc.Program) (*ipc.LearningData, error) {
	if !c.Usable() {
		return nil, ErrNotConnected
	}
	if err := program.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}
	data, err := c.transport.Query(ctx, program)
	if err != nil {
		return nil, c.fail("query", err)
	}
	return data, nil
}

// Disconnect closes the session. On failure the connection is FAILED and
// cannot be retried.
func (c *Connection) Disconnect(ctx context.Context) error {
	if !c.Usable() {
		return ErrNotConnected
	}
	transport := c.transport
	c.transport = nil
	if err := transport.Close(ctx); err != nil {
		c.status = StatusFailed
		c.err = err
		logging.WarnWithContext(c.logger, "daemon disconnect failed", "daemon_disconnect_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "daemon may keep stale session state"))
		return &TransportError{Op: "disconnect", Err: err}
	}
	c.status = StatusDisconnected
	c.logger.Info("daemon disconnected", logging.String(logging.FieldEventType, "daemon_disconnected"))
	return nil
}

func (c *Connection) fail(op string, err error) error {
	c.status = StatusFailed
	c.err = err
	if c.transport != nil {
		if abortErr := c.transport.Abort(); abortErr != nil {
			c.logger.Debug("transport release failed", logging.Error(abortErr))
		}
		c.transport = nil
	}
	logging.WarnWithContext(c.logger, "daemon request failed", "daemon_"+op+"_failed",
		logging.String("op", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "restart ascsh once the daemon is reachable"),
		logging.String(logging.FieldImpact, "session is no longer usable"))
	return &TransportError{Op: op, Err: err}
}
