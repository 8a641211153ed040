package testutil

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// PriceServers starts one JSON API per price. Each answers {"price": p}
// with p written as a float, and is closed when the test ends.
func PriceServers(t *testing.T, prices ...float64) []string {
	t.Helper()

	urls := make([]string, len(prices))
	for i, p := range prices {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"price": %.1f}`, p)
		}))
		t.Cleanup(srv.Close)
		urls[i] = srv.URL
	}
	return urls
}
