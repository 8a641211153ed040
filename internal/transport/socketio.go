package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/segmentio/encoding/json"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/radon"
)

// SocketIOCommand is the body of a socketio source: the event to emit with
// its payload and the event whose first payload is the result.
type SocketIOCommand struct {
	Namespace string `json:"namespace,omitempty"`
	Emit      string `json:"emit"`
	Data      any    `json:"data,omitempty"`
	On        string `json:"on"`
}

// ParseSocketIOCommand decodes and checks a socketio source body.
func ParseSocketIOCommand(body string) (*SocketIOCommand, error) {
	var cmd SocketIOCommand
	if err := json.Unmarshal([]byte(body), &cmd); err != nil {
		return nil, invalid("socketio body is not a JSON command: %v", err)
	}
	if cmd.On == "" {
		return nil, invalid("socketio body needs an \"on\" event")
	}
	if cmd.Namespace == "" {
		cmd.Namespace = "/"
	}
	return &cmd, nil
}

// SocketIO runs socketio sources over the websocket transport of socket.io.
type SocketIO struct {
	InsecureSkipVerify bool
}

// NewSocketIO creates a socket.io transport.
func NewSocketIO() *SocketIO {
	return &SocketIO{}
}

type socketIOResult struct {
	payload []byte
	err     error
}

// Fetch connects, emits the command and waits for the awaited event. The
// first payload of that event is returned as its JSON text.
func (s *SocketIO) Fetch(ctx context.Context, req Request) (radon.Value, error) {
	logger := ctxlog.FromContext(ctx).With("transport", "socketio", "url", req.URL)

	if req.Proxy != nil {
		return nil, invalid("socketio sources cannot use proxies")
	}
	cmd, err := ParseSocketIOCommand(req.Body)
	if err != nil {
		return nil, err
	}
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, invalid("bad URL: %v", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if s.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cmd.Namespace, opts)
	defer io.Disconnect()

	done := make(chan socketIOResult, 1)
	send := func(r socketIOResult) {
		select {
		case done <- r:
		default:
		}
	}

	io.Once(types.EventName(cmd.On), func(data ...any) {
		var first any
		if len(data) > 0 {
			first = data[0]
		}
		payload, err := json.Marshal(first)
		if err != nil {
			send(socketIOResult{err: malformed("cannot encode %q payload: %v", cmd.On, err)})
			return
		}
		send(socketIOResult{payload: payload})
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("socket.io connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("socket.io connection failed: %w", e)
			}
		}
		send(socketIOResult{err: err})
	})
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		if cmd.Emit == "" {
			return
		}
		if cmd.Data != nil {
			io.Emit(cmd.Emit, cmd.Data)
		} else {
			io.Emit(cmd.Emit)
		}
	})

	io.Connect()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Debug("Received event.", "event", cmd.On, "size", len(res.payload))
		return radon.String(res.payload), nil
	}
}
