package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/radon"
)

// WebSocket connects to a websocket source, sends the body when there is one
// and returns the first message received.
type WebSocket struct {
	HandshakeTimeout time.Duration
}

// NewWebSocket creates a websocket transport.
func NewWebSocket() *WebSocket {
	return &WebSocket{HandshakeTimeout: 10 * time.Second}
}

// Fetch implements the transport for websocket sources.
func (w *WebSocket) Fetch(ctx context.Context, req Request) (radon.Value, error) {
	logger := ctxlog.FromContext(ctx).With("transport", "websocket", "url", req.URL)

	header := http.Header{}
	for name, value := range req.Headers {
		header.Set(name, value)
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyURL(req.Proxy),
		HandshakeTimeout: w.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, req.URL, header)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(dl)
		_ = conn.SetWriteDeadline(dl)
	}
	if req.Body != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(req.Body)); err != nil {
			return nil, w.failure(ctx, "write", err)
		}
	}

	mt, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, w.failure(ctx, "read", err)
	}
	logger.Debug("Received websocket message.", "type", mt, "size", len(msg))
	if mt == websocket.BinaryMessage {
		return radon.Bytes(msg), nil
	}
	if !utf8.Valid(msg) {
		return nil, malformed("websocket message is not valid UTF-8")
	}
	return radon.String(msg), nil
}

// failure prefers the context error, since closing the connection on
// cancellation surfaces as a plain network error.
func (w *WebSocket) failure(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("websocket %s failed: %w", op, err)
}
