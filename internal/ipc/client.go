package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"time"
)

// DefaultDialTimeout bounds socket connection when the caller passes zero.
const DefaultDialTimeout = 2 * time.Second

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client

	sessionID      string
	requestTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the IPC server at the given socket path.
func Dial(ctx context.Context, path string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// SetSessionID tags every subsequent request with id.
func (c *Client) SetSessionID(id string) {
	c.sessionID = id
}

// SetRequestTimeout bounds each call. Zero waits for the daemon indefinitely.
func (c *Client) SetRequestTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.requestTimeout = d
}

// Quit asks the daemon to shut down.
func (c *Client) Quit(ctx context.Context) error {
	var resp QuitResponse
	if err := c.call(ctx, ServiceName+".Quit", QuitRequest{SessionID: c.sessionID}, &resp); err != nil {
		return err
	}
	if !resp.Acknowledged {
		return fmt.Errorf("quit: %w", ErrMalformedResponse)
	}
	return nil
}

// Query fetches learning data for the program. A nil result means the daemon
// has none.
func (c *Client) Query(ctx context.Context, program Program) (*LearningData, error) {
	var resp QueryResponse
	req := QueryRequest{SessionID: c.sessionID, Program: program}
	if err := c.call(ctx, ServiceName+".Query", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("query: found without data: %w", ErrMalformedResponse)
	}
	return resp.Data, nil
}

// Close performs the disconnect handshake and releases the connection. The
// connection is released even when the handshake fails.
func (c *Client) Close(ctx context.Context) error {
	var resp DisconnectResponse
	err := c.call(ctx, ServiceName+".Disconnect", DisconnectRequest{SessionID: c.sessionID}, &resp)
	if err == nil && !resp.Acknowledged {
		err = fmt.Errorf("disconnect: %w", ErrMalformedResponse)
	}
	if releaseErr := c.Abort(); err == nil {
		err = releaseErr
	}
	return err
}

// Abort releases the connection without notifying the daemon.
func (c *Client) Abort() error {
	c.closeOnce.Do(func() {
		if c.client != nil {
			_ = c.client.Close()
		}
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				c.closeErr = err
			}
		}
	})
	return c.closeErr
}

func (c *Client) call(ctx context.Context, method string, args, reply any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	call := c.client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case done := <-call.Done:
		return done.Error
	case <-ctx.Done():
		// net/rpc has no per-call cancel; dropping the connection unblocks the reader.
		_ = c.Abort()
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}
