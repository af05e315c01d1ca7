package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"ascsh/internal/daemonconn"
	"ascsh/internal/ipc"
	"ascsh/internal/logging"
)

// DefaultProgram is looked up when lookup is given no name.
const DefaultProgram = "test"

// ErrConnectionFailed reports that the loop ended because the daemon session failed.
var ErrConnectionFailed = errors.New("daemon connection failed")

// LineReader supplies input lines. io.EOF ends input.
type LineReader interface {
	ReadLine() (string, error)
}

// History records submitted lines.
type History interface {
	Append(line string) error
}

// Options configures an Interpreter.
type Options struct {
	Out            io.Writer
	Err            io.Writer
	History        History
	Logger         *slog.Logger
	DefaultProgram string
	Color          bool
}

// Interpreter drives one shell session against a connection.
type Interpreter struct {
	conn           *daemonconn.Connection
	in             LineReader
	out            io.Writer
	errOut         io.Writer
	history        History
	logger         *slog.Logger
	defaultProgram string
	color          bool
}

// New builds an interpreter reading from in and acting on conn.
func New(conn *daemonconn.Connection, in LineReader, opts Options) *Interpreter {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	program := strings.TrimSpace(opts.DefaultProgram)
	if program == "" {
		program = DefaultProgram
	}
	return &Interpreter{
		conn:           conn,
		in:             in,
		out:            opts.Out,
		errOut:         opts.Err,
		history:        opts.History,
		logger:         logging.NewComponentLogger(opts.Logger, "shell"),
		defaultProgram: program,
		color:          opts.Color,
	}
}

// Run loops until the user exits, input ends, ctx is canceled or the
// connection leaves the connected state. It returns ErrConnectionFailed when
// the session failed and nil otherwise.
func (s *Interpreter) Run(ctx context.Context) error {
	for {
		switch s.conn.Status() {
		case daemonconn.StatusDisconnected:
			fmt.Fprintln(s.out, s.paint(statusInfo, "connection status changed to: disconnected"))
			return nil
		case daemonconn.StatusFailed:
			fmt.Fprintln(s.out, s.paint(statusError, "connection status changed to: error"))
			fmt.Fprintf(s.errOut, "error: %v\n", s.conn.Err())
			return fmt.Errorf("%w: %w", ErrConnectionFailed, s.conn.Err())
		}

		if ctx.Err() != nil {
			return nil
		}

		line, err := s.read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(s.out)
				return nil
			}
			logging.WarnWithContext(s.logger, "input read failed", "input_read_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "shell treats this as end of input"))
			fmt.Fprintln(s.out)
			return nil
		}

		if strings.TrimSpace(line) != "" && s.history != nil {
			if err := s.history.Append(line); err != nil {
				logging.WarnWithContext(s.logger, "history append failed", "history_append_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions on the history file"),
					logging.String(logging.FieldImpact, "this line will not be recalled next session"))
			}
		}

		if exit := s.dispatch(ctx, line); exit {
			return nil
		}
	}
}

// read waits for the next line or ctx cancellation. A canceled read leaves its
// goroutine blocked on input; the loop never reads again after that.
func (s *Interpreter) read(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := s.in.ReadLine()
		ch <- result{line: line, err: err}
	}()
	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Interpreter) dispatch(ctx context.Context, line string) bool {
	cmd := Classify(line)
	s.logger.Debug("command received", logging.String("command", cmd.String()))

	switch cmd {
	case CommandEmpty:
	case CommandExit:
		return true
	case CommandHelp:
		io.WriteString(s.out, renderHelp())
	case CommandQuit:
		s.quit(ctx)
	case CommandLookup:
		s.lookup(ctx, line)
	default:
		fmt.Fprintln(s.out, "unrecognized command (try 'help' for help)")
	}
	return false
}

func (s *Interpreter) quit(ctx context.Context) {
	fmt.Fprint(s.out, "sending quit message... ")
	if err := s.conn.IssueQuit(ctx); err != nil {
		fmt.Fprintln(s.out, s.paint(statusError, "failed"))
		fmt.Fprintln(s.errOut, "failed to quit daemon")
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, s.paint(statusOK, "sent"))
}

func (s *Interpreter) lookup(ctx context.Context, line string) {
	name := lookupArgument(line)
	if name == "" {
		name = s.defaultProgram
	}

	data, err := s.conn.Query(ctx, ipc.Program{Name: name, AnyRegime: true})
	switch {
	case errors.Is(err, daemonconn.ErrInvalidProgram):
		fmt.Fprintln(s.out, err.Error())
	case err != nil:
		fmt.Fprintln(s.errOut, s.paint(statusError, "lookup failed"))
		fmt.Fprintf(s.errOut, "error: %v\n", err)
	case data == nil:
		fmt.Fprintln(s.out, "no learning data for this program")
	default:
		s.logger.Debug("learning data received",
			logging.String("program", name),
			logging.Uint64("regime_dim", data.Regime.Dim))
		fmt.Fprintf(s.out, "got learning data for this program (regime dimension: %d)\n", data.Regime.Dim)
	}
}
