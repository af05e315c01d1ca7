package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"ascsh/internal/logging"
)

// Backend answers protocol requests on behalf of the daemon.
type Backend interface {
	Quit(ctx context.Context) error
	Lookup(ctx context.Context, program Program) (*LearningData, error)
	// Disconnect releases per-session state for sessionID.
	Disconnect(ctx context.Context, sessionID string) error
}

// Server exposes a Backend via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, backend Backend, logger *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("ipc server requires backend")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{backend: backend, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Path returns the socket path the server listens on.
func (s *Server) Path() string {
	return s.path
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String(logging.FieldSocket, s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "shell clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.track(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.track(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server, drops open client connections and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String(logging.FieldSocket, s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
		return
	}
	delete(s.conns, conn)
}

type service struct {
	backend Backend
	logger  *slog.Logger
	ctx     context.Context
}

func (s *service) Quit(req QuitRequest, resp *QuitResponse) error {
	s.logger.Debug("daemon quit requested", logging.String(logging.FieldSessionID, req.SessionID))
	if err := s.backend.Quit(s.ctx); err != nil {
		return err
	}
	resp.Acknowledged = true
	s.logger.Info("daemon quit acknowledged",
		logging.String(logging.FieldEventType, "daemon_quit"),
		logging.String(logging.FieldSessionID, req.SessionID))
	return nil
}

func (s *service) Query(req QueryRequest, resp *QueryResponse) error {
	if err := req.Program.Validate(); err != nil {
		return err
	}
	data, err := s.backend.Lookup(s.ctx, req.Program)
	if err != nil {
		return err
	}
	resp.Found = data != nil
	resp.Data = data
	s.logger.Debug("learning data lookup",
		logging.String(logging.FieldSessionID, req.SessionID),
		logging.String("program", req.Program.Name),
		logging.Bool("found", resp.Found))
	return nil
}

func (s *service) Disconnect(req DisconnectRequest, resp *DisconnectResponse) error {
	if err := s.backend.Disconnect(s.ctx, req.SessionID); err != nil {
		return err
	}
	resp.Acknowledged = true
	s.logger.Debug("client disconnected",
		logging.String(logging.FieldEventType, "client_disconnect"),
		logging.String(logging.FieldSessionID, req.SessionID))
	return nil
}
