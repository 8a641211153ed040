package retrieval

import (
	"net/url"
	"time"

	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

// Kind is the retrieval method of a source.
type Kind string

const (
	KindHTTPGet   Kind = "http-get"
	KindHTTPPost  Kind = "http-post"
	KindHTTPHead  Kind = "http-head"
	KindRNG       Kind = "rng"
	KindWebSocket Kind = "websocket"
	KindSocketIO  Kind = "socketio"
)

// Kinds lists every known kind.
var Kinds = []Kind{KindHTTPGet, KindHTTPPost, KindHTTPHead, KindRNG, KindWebSocket, KindSocketIO}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// proxied reports whether the kind is fetched over every path. Local
// randomness has nothing to compare and socket.io only connects directly.
func (k Kind) proxied() bool {
	return k != KindRNG && k != KindSocketIO
}

// Source is one compiled data source.
type Source struct {
	Kind    Kind
	URL     string
	Body    string
	Headers map[string]string
	Script  *script.Script
}

// Params are the per-request retrieval settings.
type Params struct {
	// Paranoia is the percentage of paths that must agree, 1 to 100.
	Paranoia       int
	Proxies        []*url.URL
	AllowUnproxied bool
	Timeout        time.Duration
}

// PathResult is the outcome of one source over one path.
type PathResult struct {
	// Proxy is empty for the direct connection.
	Proxy string
	Value radon.Value
}

// SourceReport describes how a source was resolved.
type SourceReport struct {
	Index    int
	Kind     Kind
	URL      string
	Paths    []PathResult
	Agree    int
	Accepted bool
	Value    radon.Value
	Elapsed  time.Duration
	Injected bool
}

// Result is the outcome of a retrieval stage.
type Result struct {
	// Values holds one value per source, ordered by source index.
	Values  radon.Array
	Sources []SourceReport
}
