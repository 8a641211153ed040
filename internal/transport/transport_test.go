package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotlied(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestHTTP_Fetch(t *testing.T) {
	t.Parallel()

	const doc = `{"price": 1}`
	gz, br, zs := gzipped(t, doc), brotlied(t, doc), zstded(t, doc)
	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, doc)
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(gz)
	})
	mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(br)
	})
	mux.HandleFunc("/zstd", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		_, _ = w.Write(zs)
	})
	mux.HandleFunc("/binary", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0xff, 0x00})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = io.WriteString(w, r.Method+" "+string(body)+" "+r.Header.Get("X-Api-Key")+" "+r.UserAgent())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	h := NewHTTP(HTTPConfig{UserAgents: []string{"radgo-test"}})
	t.Cleanup(h.Close)

	testCases := []struct {
		name string
		req  Request
		want radon.Value
	}{
		{name: "plain", req: Request{Kind: "http-get", URL: srv.URL + "/plain"}, want: radon.String(doc)},
		{name: "gzip", req: Request{Kind: "http-get", URL: srv.URL + "/gzip"}, want: radon.String(doc)},
		{name: "brotli", req: Request{Kind: "http-get", URL: srv.URL + "/br"}, want: radon.String(doc)},
		{name: "zstd", req: Request{Kind: "http-get", URL: srv.URL + "/zstd"}, want: radon.String(doc)},
		{name: "binary", req: Request{Kind: "http-get", URL: srv.URL + "/binary"}, want: radon.Bytes{0xff, 0x00}},
		{
			name: "post with headers",
			req:  Request{Kind: "http-post", URL: srv.URL + "/echo", Body: "q=1", Headers: map[string]string{"X-Api-Key": "k"}},
			want: radon.String("POST q=1 k radgo-test"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := h.Fetch(context.Background(), tc.req)
			require.NoError(t, err)
			require.True(t, radon.Equal(tc.want, got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestHTTP_Head(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Block-Height", "1234")
	}))
	t.Cleanup(srv.Close)

	got, err := NewHTTP(HTTPConfig{}).Fetch(context.Background(), Request{Kind: "http-head", URL: srv.URL})
	require.NoError(t, err)

	m, ok := got.(radon.Map)
	require.True(t, ok)
	height, found := m.Get("x-block-height")
	require.True(t, found)
	assert.Equal(t, radon.String("1234"), height)
}

func TestHTTP_Failures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/latin1":
			_, _ = w.Write([]byte{0xe9})
		case "/large":
			_, _ = w.Write(bytes.Repeat([]byte("a"), 64))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		case "/bad-gzip":
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = io.WriteString(w, "not gzip")
		}
	}))
	t.Cleanup(srv.Close)

	h := NewHTTP(HTTPConfig{MaxBodySize: 32})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "http-get", URL: srv.URL + "/down"})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "http-get", URL: srv.URL + "/latin1"})
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "http-get", URL: srv.URL + "/large"})
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("bad compression", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "http-get", URL: srv.URL + "/bad-gzip"})
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("invalid header", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "http-get", URL: srv.URL, Headers: map[string]string{"Bad Header": "x"}})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("deadline", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := h.Fetch(ctx, Request{Kind: "http-get", URL: srv.URL + "/slow"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := h.Fetch(context.Background(), Request{Kind: "ftp", URL: srv.URL})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestWebSocket_Fetch(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(strings.ToUpper(string(msg))))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	got, err := NewWebSocket().Fetch(context.Background(), Request{Kind: "websocket", URL: url, Body: "subscribe"})

	require.NoError(t, err)
	assert.Equal(t, radon.String("SUBSCRIBE"), got)
}

func TestWebSocket_BadHandshake(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, err := NewWebSocket().Fetch(context.Background(), Request{Kind: "websocket", URL: url})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
}

func TestRNG_Fetch(t *testing.T) {
	t.Parallel()

	a, err := RNG{}.Fetch(context.Background(), Request{Kind: "rng"})
	require.NoError(t, err)
	b, err := RNG{}.Fetch(context.Background(), Request{Kind: "rng"})
	require.NoError(t, err)

	require.Len(t, a.(radon.Bytes), RNGSize)
	assert.False(t, radon.Equal(a, b))
}

func TestParseSocketIOCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ParseSocketIOCommand(`{"emit": "subscribe", "data": {"pair": "BTC/USD"}, "on": "price"}`)
	require.NoError(t, err)
	assert.Equal(t, "/", cmd.Namespace)
	assert.Equal(t, "subscribe", cmd.Emit)
	assert.Equal(t, "price", cmd.On)

	_, err = ParseSocketIOCommand(`{"emit": "subscribe"}`)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = ParseSocketIOCommand(`nope`)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewSocketIO().Fetch(context.Background(), Request{Kind: "socketio", URL: "http://localhost", Body: "{}"})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
