package daemonconn_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"ascsh/internal/daemonconn"
	"ascsh/internal/ipc"
	"ascsh/internal/testsupport"
)

type fakeTransport struct {
	quitErr  error
	queryErr error
	closeErr error
	data     map[string]ipc.LearningData

	quits    int
	queries  []ipc.Program
	closes   int
	aborts   int
	released int
}

func (f *fakeTransport) Quit(context.Context) error {
	f.quits++
	return f.quitErr
}

func (f *fakeTransport) Query(_ context.Context, p ipc.Program) (*ipc.LearningData, error) {
	f.queries = append(f.queries, p)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if d, ok := f.data[p.Name]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeTransport) Close(context.Context) error {
	f.closes++
	f.released++
	return f.closeErr
}

func (f *fakeTransport) Abort() error {
	f.aborts++
	f.released++
	return nil
}

func (f *fakeTransport) calls() int {
	return f.quits + len(f.queries) + f.closes + f.aborts
}

func connectFake(t *testing.T, ft *fakeTransport) *daemonconn.Connection {
	t.Helper()
	conn, err := daemonconn.Connect(context.Background(), "/tmp/fake.sock",
		daemonconn.WithSessionID("sess"),
		daemonconn.WithDialer(func(context.Context, string) (daemonconn.Transport, error) {
			return ft, nil
		}))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return conn
}

var errBrokenPipe = errors.New("broken pipe")

func TestConnectSuccess(t *testing.T) {
	conn := connectFake(t, &fakeTransport{})
	if conn.Status() != daemonconn.StatusConnected {
		t.Fatalf("expected connected, got %s", conn.Status())
	}
	if conn.Err() != nil {
		t.Fatalf("expected no error, got %v", conn.Err())
	}
	if conn.Path() != "/tmp/fake.sock" || conn.SessionID() != "sess" || !conn.Usable() {
		t.Fatalf("unexpected accessors: path=%q session=%q usable=%v", conn.Path(), conn.SessionID(), conn.Usable())
	}
}

func TestConnectFailureReturnsFailedConnection(t *testing.T) {
	conn, err := daemonconn.Connect(context.Background(), "/nowhere.sock",
		daemonconn.WithDialer(func(context.Context, string) (daemonconn.Transport, error) {
			return nil, unix.ENOENT
		}))
	if conn == nil {
		t.Fatal("expected non-nil connection on failure")
	}
	if conn.Status() != daemonconn.StatusFailed {
		t.Fatalf("expected failed, got %s", conn.Status())
	}
	var connectErr *daemonconn.ConnectError
	if !errors.As(err, &connectErr) || connectErr.Path != "/nowhere.sock" {
		t.Fatalf("expected ConnectError, got %v", err)
	}
	if !errors.Is(err, unix.ENOENT) || !errors.Is(conn.Err(), unix.ENOENT) {
		t.Fatalf("expected ENOENT to be preserved, got %v / %v", err, conn.Err())
	}
	if conn.SessionID() == "" {
		t.Fatal("expected generated session id")
	}
	if err := conn.IssueQuit(context.Background()); !errors.Is(err, daemonconn.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestIssueQuitKeepsSessionOpen(t *testing.T) {
	ft := &fakeTransport{}
	conn := connectFake(t, ft)
	if err := conn.IssueQuit(context.Background()); err != nil {
		t.Fatalf("IssueQuit: %v", err)
	}
	if conn.Status() != daemonconn.StatusConnected || ft.quits != 1 || ft.released != 0 {
		t.Fatalf("unexpected state after quit: status=%s quits=%d released=%d", conn.Status(), ft.quits, ft.released)
	}
}

func TestTransportFailuresForceFailed(t *testing.T) {
	cases := map[string]func(*daemonconn.Connection) error{
		"quit": func(c *daemonconn.Connection) error { return c.IssueQuit(context.Background()) },
		"query": func(c *daemonconn.Connection) error {
			_, err := c.Query(context.Background(), ipc.Program{Name: "test", AnyRegime: true})
			return err
		},
	}
	for op, run := range cases {
		t.Run(op, func(t *testing.T) {
			ft := &fakeTransport{quitErr: errBrokenPipe, queryErr: errBrokenPipe}
			conn := connectFake(t, ft)

			err := run(conn)
			var transportErr *daemonconn.TransportError
			if !errors.As(err, &transportErr) || transportErr.Op != op {
				t.Fatalf("expected TransportError for %s, got %v", op, err)
			}
			if !errors.Is(err, errBrokenPipe) || !errors.Is(conn.Err(), errBrokenPipe) {
				t.Fatalf("expected diagnostic to be preserved, got %v", conn.Err())
			}
			if conn.Status() != daemonconn.StatusFailed {
				t.Fatalf("expected failed, got %s", conn.Status())
			}
			if ft.released != 1 || ft.aborts != 1 {
				t.Fatalf("expected single release via abort, got released=%d aborts=%d", ft.released, ft.aborts)
			}

			before := ft.calls()
			if err := conn.IssueQuit(context.Background()); !errors.Is(err, daemonconn.ErrNotConnected) {
				t.Fatalf("expected ErrNotConnected after failure, got %v", err)
			}
			if _, err := conn.Query(context.Background(), ipc.Program{Name: "test"}); !errors.Is(err, daemonconn.ErrNotConnected) {
				t.Fatalf("expected ErrNotConnected after failure, got %v", err)
			}
			if err := conn.Disconnect(context.Background()); !errors.Is(err, daemonconn.ErrNotConnected) {
				t.Fatalf("expected ErrNotConnected after failure, got %v", err)
			}
			if ft.calls() != before {
				t.Fatal("expected no transport access once failed")
			}
			if conn.Status() != daemonconn.StatusFailed {
				t.Fatalf("expected status to stay failed, got %s", conn.Status())
			}
		})
	}
}

func TestQueryResults(t *testing.T) {
	ft := &fakeTransport{data: map[string]ipc.LearningData{"bzip2": {Regime: ipc.Regime{Dim: 4}}}}
	conn := connectFake(t, ft)

	data, err := conn.Query(context.Background(), ipc.Program{Name: "bzip2", AnyRegime: true})
	if err != nil || data == nil || data.Regime.Dim != 4 {
		t.Fatalf("unexpected result: %#v, %v", data, err)
	}

	data, err = conn.Query(context.Background(), ipc.Program{Name: "test", AnyRegime: true})
	if err != nil {
		t.Fatalf("expected absent data to be a success, got %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %#v", data)
	}
	if conn.Status() != daemonconn.StatusConnected {
		t.Fatalf("expected connected after lookups, got %s", conn.Status())
	}
}

func TestQueryRejectsInvalidProgramWithoutIO(t *testing.T) {
	ft := &fakeTransport{}
	conn := connectFake(t, ft)

	_, err := conn.Query(context.Background(), ipc.Program{Name: strings.Repeat("p", ipc.MaxProgramNameLen+1)})
	if !errors.Is(err, daemonconn.ErrInvalidProgram) {
		t.Fatalf("expected ErrInvalidProgram, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "invalid program name: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if ft.calls() != 0 || conn.Status() != daemonconn.StatusConnected {
		t.Fatalf("expected no I/O and unchanged status, calls=%d status=%s", ft.calls(), conn.Status())
	}
}

func TestDisconnectSuccess(t *testing.T) {
	ft := &fakeTransport{}
	conn := connectFake(t, ft)

	if err := conn.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if conn.Status() != daemonconn.StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", conn.Status())
	}
	if ft.closes != 1 || ft.released != 1 {
		t.Fatalf("expected one close, got closes=%d released=%d", ft.closes, ft.released)
	}
	if err := conn.Disconnect(context.Background()); !errors.Is(err, daemonconn.ErrNotConnected) {
		t.Fatalf("expected second disconnect to be rejected, got %v", err)
	}
	if ft.released != 1 {
		t.Fatalf("expected release exactly once, got %d", ft.released)
	}
}

func TestDisconnectFailure(t *testing.T) {
	ft := &fakeTransport{closeErr: errBrokenPipe}
	conn := connectFake(t, ft)

	err := conn.Disconnect(context.Background())
	var transportErr *daemonconn.TransportError
	if !errors.As(err, &transportErr) || transportErr.Op != "disconnect" {
		t.Fatalf("expected disconnect TransportError, got %v", err)
	}
	if conn.Status() != daemonconn.StatusFailed || !errors.Is(conn.Err(), errBrokenPipe) {
		t.Fatalf("expected failed with diagnostic, got %s / %v", conn.Status(), conn.Err())
	}
	if ft.released != 1 {
		t.Fatalf("expected release exactly once, got %d", ft.released)
	}
}

func TestStatusString(t *testing.T) {
	want := map[daemonconn.Status]string{
		daemonconn.StatusConnected:    "connected",
		daemonconn.StatusDisconnected: "disconnected",
		daemonconn.StatusFailed:       "failed",
	}
	for status, s := range want {
		if status.String() != s {
			t.Fatalf("Status(%d).String() = %q, want %q", int(status), status.String(), s)
		}
	}
}

func TestConnectOverIPC(t *testing.T) {
	backend := testsupport.NewMemoryBackend()
	backend.Put("test", 2)
	socket, _ := testsupport.StartDaemon(t, backend)

	conn, err := daemonconn.Connect(context.Background(), socket)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	data, err := conn.Query(context.Background(), ipc.Program{Name: "test", AnyRegime: true})
	if err != nil || data == nil || data.Regime.Dim != 2 {
		t.Fatalf("unexpected lookup result %#v, %v", data, err)
	}
	if err := conn.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if conn.Status() != daemonconn.StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", conn.Status())
	}
}

func TestConnectOverIPCMissingSocket(t *testing.T) {
	socket := filepath.Join(testsupport.SocketDir(t), "missing.sock")
	conn, err := daemonconn.Connect(context.Background(), socket)
	if err == nil {
		t.Fatal("expected connect error")
	}
	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
	if conn.Status() != daemonconn.StatusFailed {
		t.Fatalf("expected failed, got %s", conn.Status())
	}
}
