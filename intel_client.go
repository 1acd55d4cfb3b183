// complete/intel_client.go
// JSON-RPC client for the code-intelligence server. Implements the Completer
// interface over a TCP or WebSocket stream.
package complete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
)

// IntelClient talks JSON-RPC 2.0 to the code-intelligence server. The
// per-category command name from the language profile becomes the request
// method. Calls are synchronous; each blocks until the server replies or the
// context is done. Failures propagate wrapped in ErrIntelUnavailable, the
// client does not retry.
type IntelClient struct {
	conn   *jsonrpc2.Conn
	logger *slog.Logger
}

var _ Completer = (*IntelClient)(nil)

// DialIntel connects to the server configured in cfg and returns a ready
// client.
func DialIntel(ctx context.Context, cfg Config, logger *slog.Logger) (*IntelClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clientLogger := logger.With("component", "IntelClient", "addr", cfg.ServerAddr, "transport", cfg.Transport)

	var stream jsonrpc2.ObjectStream
	switch cfg.Transport {
	case "websocket":
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = cfg.DialTimeout
		wsConn, _, err := dialer.DialContext(ctx, cfg.ServerAddr, nil)
		if err != nil {
			clientLogger.Error("WebSocket dial failed", "error", err)
			return nil, fmt.Errorf("%w: websocket dial %s: %w", ErrIntelUnavailable, cfg.ServerAddr, err)
		}
		stream = wsjsonrpc2.NewObjectStream(wsConn)
	default:
		netConn, err := (&net.Dialer{Timeout: cfg.DialTimeout}).DialContext(ctx, "tcp", cfg.ServerAddr)
		if err != nil {
			clientLogger.Error("TCP dial failed", "error", err)
			return nil, fmt.Errorf("%w: tcp dial %s: %w", ErrIntelUnavailable, cfg.ServerAddr, err)
		}
		stream = jsonrpc2.NewPlainObjectStream(netConn)
	}

	c := &IntelClient{logger: clientLogger}
	c.conn = jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(c.handle))
	clientLogger.Info("Connected to code-intelligence server")
	return c, nil
}

// handle receives server-initiated traffic. The completion protocol has no
// server-to-client requests; notifications are logged and dropped.
func (c *IntelClient) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Notif {
		c.logger.Debug("Ignoring server notification", "method", req.Method)
		return nil, nil
	}
	c.logger.Warn("Unexpected server request", "method", req.Method)
	return nil, &jsonrpc2.Error{Code: jsonRpcMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
}

// Complete queries the server with the category's command and normalizes the
// returned records.
func (c *IntelClient) Complete(ctx context.Context, category Category, q Query) ([]Candidate, error) {
	prof, ok := ProfileFor(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	params := completeParams{
		File:    q.Path,
		Offset:  q.Offset,
		Prefix:  q.Prefix,
		Content: q.Content,
	}
	var result completeResult
	if err := c.conn.Call(ctx, prof.Command, params, &result); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.logger.Error("Completion call failed", "command", prof.Command, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrIntelUnavailable, prof.Command, err)
	}

	candidates := make([]Candidate, 0, len(result.Completions))
	for _, rec := range result.Completions {
		candidates = append(candidates, newCandidate(rec, prof))
	}
	c.logger.Debug("Completion call succeeded", "command", prof.Command, "count", len(candidates))
	return candidates, nil
}

// DisconnectNotify returns a channel closed when the connection drops.
func (c *IntelClient) DisconnectNotify() <-chan struct{} {
	return c.conn.DisconnectNotify()
}

// Close tears down the connection.
func (c *IntelClient) Close() error {
	return c.conn.Close()
}
