package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/http/httpguts"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/radon"
)

// DefaultMaxBodySize caps decoded response bodies.
const DefaultMaxBodySize = 8 << 20

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// UserAgents is the pool a User-Agent header is picked from per request.
	UserAgents  []string
	MaxBodySize int64
}

// HTTP fetches http-get, http-post and http-head sources. Clients are kept
// per proxy so connections are reused along the same path.
type HTTP struct {
	cfg     HTTPConfig
	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewHTTP creates an HTTP transport.
func NewHTTP(cfg HTTPConfig) *HTTP {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	return &HTTP{cfg: cfg, clients: make(map[string]*http.Client)}
}

func (h *HTTP) client(req Request) *http.Client {
	key := ""
	if req.Proxy != nil {
		key = req.Proxy.String()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[key]; ok {
		return c
	}
	tr := &http.Transport{
		Proxy:               http.ProxyURL(req.Proxy),
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		// Bodies are decompressed here so br and zstd are handled as well.
		DisableCompression: true,
	}
	c := &http.Client{Transport: tr}
	h.clients[key] = c
	return c
}

func method(kind string) (string, error) {
	switch kind {
	case "http-get":
		return http.MethodGet, nil
	case "http-post":
		return http.MethodPost, nil
	case "http-head":
		return http.MethodHead, nil
	}
	return "", invalid("unsupported kind %q", kind)
}

// Fetch performs the request. Deadlines come from ctx.
func (h *HTTP) Fetch(ctx context.Context, req Request) (radon.Value, error) {
	logger := ctxlog.FromContext(ctx).With("transport", "http", "url", req.URL)

	m, err := method(req.Kind)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, m, req.URL, body)
	if err != nil {
		return nil, invalid("%v", err)
	}
	for name, value := range req.Headers {
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, invalid("invalid header %q", name)
		}
		httpReq.Header.Set(name, value)
	}
	if len(h.cfg.UserAgents) > 0 && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", h.cfg.UserAgents[rand.IntN(len(h.cfg.UserAgents))])
	}
	httpReq.Header.Set("Accept-Encoding", "gzip, br, zstd")

	start := time.Now()
	resp, err := h.client(req).Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Received response.", "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	if m == http.MethodHead {
		return headerMap(resp.Header), nil
	}

	raw, err := h.readBody(resp)
	if err != nil {
		return nil, err
	}
	logger.Debug("Decoded response body.", "size", humanize.IBytes(uint64(len(raw))))

	if isBinary(resp.Header) {
		return radon.Bytes(raw), nil
	}
	if !utf8.Valid(raw) {
		return nil, malformed("response body is not valid UTF-8")
	}
	return radon.String(raw), nil
}

func (h *HTTP) readBody(resp *http.Response) ([]byte, error) {
	r, closeFn, err := decoder(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	limited := io.LimitReader(r, h.cfg.MaxBodySize+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		if ctxErr := resp.Request.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, malformed("cannot read body: %v", err)
	}
	if int64(len(raw)) > h.cfg.MaxBodySize {
		return nil, malformed("body larger than %s", humanize.IBytes(uint64(h.cfg.MaxBodySize)))
	}
	return raw, nil
}

// decoder wraps body according to its Content-Encoding.
func decoder(encoding string, body io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, noop, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, noop, malformed("bad gzip stream: %v", err)
		}
		return zr, func() { zr.Close() }, nil
	case "br":
		return brotli.NewReader(body), noop, nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, noop, malformed("bad zstd stream: %v", err)
		}
		return zr, zr.Close, nil
	case "deflate":
		fr := flate.NewReader(body)
		return fr, func() { fr.Close() }, nil
	}
	return nil, noop, malformed("unsupported content encoding %q", encoding)
}

func isBinary(h http.Header) bool {
	if strings.EqualFold(h.Get("Accept-Ranges"), "bytes") {
		return true
	}
	ct, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	return err == nil && ct == "application/octet-stream"
}

// headerMap keeps the first value of each header under its lowercased name.
func headerMap(h http.Header) radon.Value {
	out := make(map[string]radon.Value, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(name)] = radon.String(values[0])
	}
	return radon.NewMap(out)
}

// Close drops idle connections of every client.
func (h *HTTP) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, c := range h.clients {
		c.CloseIdleConnections()
		delete(h.clients, key)
	}
	slog.Debug("HTTP transport closed.")
}
