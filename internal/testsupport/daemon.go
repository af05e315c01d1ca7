package testsupport

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ascsh/internal/ipc"
	"ascsh/internal/logging"
)

// MemoryBackend is an in-memory ipc.Backend for tests.
type MemoryBackend struct {
	mu          sync.Mutex
	data        map[string]ipc.LearningData
	quits       int
	queries     []ipc.Program
	disconnects []string

	// QuitErr, when set, is returned from Quit.
	QuitErr error
	// LookupErr, when set, is returned from Lookup.
	LookupErr error
	// DisconnectErr, when set, is returned from Disconnect.
	DisconnectErr error
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]ipc.LearningData)}
}

// Put stores learning data for a program name.
func (b *MemoryBackend) Put(name string, dim uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[name] = ipc.LearningData{Regime: ipc.Regime{Dim: dim}}
}

// Quit records the request.
func (b *MemoryBackend) Quit(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.QuitErr != nil {
		return b.QuitErr
	}
	b.quits++
	return nil
}

// Lookup returns stored data or nil.
func (b *MemoryBackend) Lookup(_ context.Context, program ipc.Program) (*ipc.LearningData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries = append(b.queries, program)
	if b.LookupErr != nil {
		return nil, b.LookupErr
	}
	data, ok := b.data[program.Name]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

// Disconnect records the session that said goodbye.
func (b *MemoryBackend) Disconnect(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DisconnectErr != nil {
		return b.DisconnectErr
	}
	b.disconnects = append(b.disconnects, sessionID)
	return nil
}

// Disconnects returns the session IDs of completed disconnect handshakes.
func (b *MemoryBackend) Disconnects() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.disconnects))
	copy(out, b.disconnects)
	return out
}

// Quits reports how many quit requests succeeded.
func (b *MemoryBackend) Quits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quits
}

// Queries returns the programs looked up so far.
func (b *MemoryBackend) Queries() []ipc.Program {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ipc.Program, len(b.queries))
	copy(out, b.queries)
	return out
}

// StartDaemon serves backend on a fresh unix socket and returns its path.
// The server is closed during test cleanup.
func StartDaemon(t testing.TB, backend ipc.Backend) (string, *ipc.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(SocketDir(t), "ascd.sock")
	srv, err := ipc.NewServer(ctx, socket, backend, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping daemon endpoint: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	return socket, srv
}

// ErrBackend is a canned failure for backend error paths.
var ErrBackend = errors.New("backend unavailable")
