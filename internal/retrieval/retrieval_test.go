package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
	"github.com/specialistvlad/radgo/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher answers by URL and proxy. Missing answers block until the
// context ends.
type fakeFetcher struct {
	mu       sync.Mutex
	answers  map[string]radon.Value
	errs     map[string]error
	delays   map[string]time.Duration
	calls    atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

func newFake() *fakeFetcher {
	return &fakeFetcher{
		answers: map[string]radon.Value{},
		errs:    map[string]error{},
		delays:  map[string]time.Duration{},
	}
}

func key(rawURL string, proxy *url.URL) string {
	if proxy == nil {
		return rawURL
	}
	return rawURL + "@" + proxy.Host
}

func (f *fakeFetcher) Fetch(ctx context.Context, req transport.Request) (radon.Value, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	k := key(req.URL, req.Proxy)
	f.mu.Lock()
	answer, hasAnswer := f.answers[k]
	err := f.errs[k]
	delay := f.delays[k]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !hasAnswer {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return answer, nil
}

func proxies(t *testing.T, hosts ...string) []*url.URL {
	t.Helper()
	out := make([]*url.URL, len(hosts))
	for i, h := range hosts {
		u, err := url.Parse("http://" + h)
		require.NoError(t, err)
		out[i] = u
	}
	return out
}

func requireErrorCode(t *testing.T, v radon.Value, code radon.ErrorCode) {
	t.Helper()
	e, ok := radon.AsError(v)
	require.True(t, ok, "expected an error value, got %s", v)
	assert.Equal(t, code, e.Code, e.Message)
}

func TestAgree_ParanoiaBoundary(t *testing.T) {
	t.Parallel()

	a, b := radon.NewInteger(1), radon.NewInteger(2)
	testCases := []struct {
		name     string
		values   []radon.Value
		paranoia int
		accepted bool
		agree    int
	}{
		{name: "single path", values: []radon.Value{a}, paranoia: 100, accepted: true, agree: 1},
		{name: "2 of 4 at 51", values: []radon.Value{a, a, b, radon.NewInteger(3)}, paranoia: 51, accepted: false, agree: 2},
		{name: "3 of 4 at 51", values: []radon.Value{a, a, a, b}, paranoia: 51, accepted: true, agree: 3},
		{name: "2 of 4 at 50 is inclusive", values: []radon.Value{a, a, b, radon.NewInteger(3)}, paranoia: 50, accepted: true, agree: 2},
		{name: "1 of 2 at 51", values: []radon.Value{a, b}, paranoia: 51, accepted: false, agree: 1},
		{name: "unanimous at 100", values: []radon.Value{b, b, b}, paranoia: 100, accepted: true, agree: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, agree, accepted := Agree(tc.values, tc.paranoia)
			assert.Equal(t, tc.accepted, accepted)
			assert.Equal(t, tc.agree, agree)
			if !accepted {
				requireErrorCode(t, v, radon.InsufficientConsensus)
			}
		})
	}
}

func TestAgree_TiesGoToLowestValue(t *testing.T) {
	t.Parallel()

	v, agree, accepted := Agree([]radon.Value{radon.NewInteger(5), radon.NewInteger(3), radon.NewInteger(5), radon.NewInteger(3)}, 50)

	require.True(t, accepted)
	assert.Equal(t, 2, agree)
	assert.True(t, radon.Equal(radon.NewInteger(3), v))
}

func TestAgree_ErrorsAreValues(t *testing.T) {
	t.Parallel()

	timeout := radon.NewError(radon.Timeout, "deadline exceeded")
	v, agree, accepted := Agree([]radon.Value{timeout, timeout, radon.NewInteger(1)}, 51)

	require.True(t, accepted)
	assert.Equal(t, 2, agree)
	requireErrorCode(t, v, radon.Timeout)
}

func TestRetrieve_OrdersBySourceIndex(t *testing.T) {
	t.Parallel()

	// Arrange
	f := newFake()
	for i, d := range []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 0} {
		u := fmt.Sprintf("http://source/%d", i)
		f.answers[u] = radon.NewInteger(int64(i))
		f.delays[u] = d
	}
	r := New(Transports{KindHTTPGet: f})
	sources := []Source{
		{Kind: KindHTTPGet, URL: "http://source/0"},
		{Kind: KindHTTPGet, URL: "http://source/1"},
		{Kind: KindHTTPGet, URL: "http://source/2"},
	}

	// Act
	res := r.Retrieve(context.Background(), sources, Params{Paranoia: 51, AllowUnproxied: true, Timeout: time.Second})

	// Assert
	require.Equal(t, 3, res.Values.Len())
	for i := range 3 {
		assert.True(t, radon.Equal(radon.NewInteger(int64(i)), res.Values.At(i)), "source %d", i)
		assert.True(t, res.Sources[i].Accepted)
	}
}

func TestRetrieve_ParanoiaOverProxies(t *testing.T) {
	t.Parallel()

	f := newFake()
	const u = "http://price"
	px := proxies(t, "p1", "p2", "p3")
	f.answers[u] = radon.NewInteger(100)
	f.answers[key(u, px[0])] = radon.NewInteger(100)
	f.answers[key(u, px[1])] = radon.NewInteger(101)
	f.answers[key(u, px[2])] = radon.NewInteger(102)
	r := New(Transports{KindHTTPGet: f})
	sources := []Source{{Kind: KindHTTPGet, URL: u}}

	t.Run("2 of 4 at 51 is rejected", func(t *testing.T) {
		t.Parallel()
		res := r.Retrieve(context.Background(), sources, Params{Paranoia: 51, AllowUnproxied: true, Proxies: px, Timeout: time.Second})
		requireErrorCode(t, res.Values.At(0), radon.InsufficientConsensus)
		assert.Len(t, res.Sources[0].Paths, 4)
		assert.Equal(t, 2, res.Sources[0].Agree)
	})

	t.Run("2 of 4 at 50 is accepted", func(t *testing.T) {
		t.Parallel()
		res := r.Retrieve(context.Background(), sources, Params{Paranoia: 50, AllowUnproxied: true, Proxies: px, Timeout: time.Second})
		assert.True(t, radon.Equal(radon.NewInteger(100), res.Values.At(0)))
	})

	t.Run("proxies only", func(t *testing.T) {
		t.Parallel()
		res := r.Retrieve(context.Background(), sources, Params{Paranoia: 33, Proxies: px, Timeout: time.Second})
		assert.Len(t, res.Sources[0].Paths, 3)
		assert.True(t, radon.Equal(radon.NewInteger(100), res.Values.At(0)), "ties go to the lowest value")
	})

	t.Run("no paths", func(t *testing.T) {
		t.Parallel()
		res := r.Retrieve(context.Background(), sources, Params{Paranoia: 51, Timeout: time.Second})
		requireErrorCode(t, res.Values.At(0), radon.InsufficientConsensus)
	})
}

func TestRetrieve_FailuresBecomeValues(t *testing.T) {
	t.Parallel()

	f := newFake()
	f.errs["http://down"] = &transport.StatusError{Code: 503}
	f.errs["http://garbled"] = fmt.Errorf("decoding: %w", transport.ErrMalformed)
	f.errs["http://refused"] = fmt.Errorf("dial tcp: connection refused")
	f.answers["http://text"] = radon.String("not json")

	s, err := script.FromSlice([]any{"StringParseJSONMap"}, operators.Default(), script.DefaultLimits)
	require.NoError(t, err)

	r := New(Transports{KindHTTPGet: f})
	sources := []Source{
		{Kind: KindHTTPGet, URL: "http://down"},
		{Kind: KindHTTPGet, URL: "http://garbled"},
		{Kind: KindHTTPGet, URL: "http://refused"},
		{Kind: KindHTTPGet, URL: "http://text", Script: s},
		{Kind: KindHTTPGet, URL: "http://silent"},
		{Kind: KindWebSocket, URL: "ws://no-transport"},
	}

	res := r.Retrieve(context.Background(), sources, Params{Paranoia: 51, AllowUnproxied: true, Timeout: 50 * time.Millisecond})

	requireErrorCode(t, res.Values.At(0), radon.HTTPStatus)
	requireErrorCode(t, res.Values.At(1), radon.MalformedSource)
	requireErrorCode(t, res.Values.At(2), radon.TransportFailure)
	requireErrorCode(t, res.Values.At(3), radon.ParseError)
	requireErrorCode(t, res.Values.At(4), radon.Timeout)
	requireErrorCode(t, res.Values.At(5), radon.MalformedSource)
}

func TestRetrieve_RunsScripts(t *testing.T) {
	t.Parallel()

	f := newFake()
	f.answers["http://price"] = radon.String(`{"usd": 42}`)
	s, err := script.FromSlice([]any{"StringParseJSONMap", []any{"MapGetInteger", "usd"}}, operators.Default(), script.DefaultLimits)
	require.NoError(t, err)

	res := New(Transports{KindHTTPGet: f}).Retrieve(context.Background(),
		[]Source{{Kind: KindHTTPGet, URL: "http://price", Script: s}},
		Params{Paranoia: 51, AllowUnproxied: true, Timeout: time.Second})

	assert.True(t, radon.Equal(radon.NewInteger(42), res.Values.At(0)))
}

func TestRetrieve_InjectedInputs(t *testing.T) {
	t.Parallel()

	f := newFake()
	s, err := script.FromSlice([]any{"StringAsInteger"}, operators.Default(), script.DefaultLimits)
	require.NoError(t, err)

	res := New(Transports{KindHTTPGet: f}).Retrieve(context.Background(),
		[]Source{{Kind: KindHTTPGet, URL: "http://never", Script: s}},
		Params{Paranoia: 51, AllowUnproxied: true, Timeout: time.Second},
		WithInputs(map[int]radon.Value{0: radon.String("7")}))

	assert.True(t, radon.Equal(radon.NewInteger(7), res.Values.At(0)))
	assert.True(t, res.Sources[0].Injected)
	assert.Zero(t, f.calls.Load())
}

func TestRetrieve_RNGIgnoresProxies(t *testing.T) {
	t.Parallel()

	f := newFake()
	f.answers["rng://"] = radon.Bytes{1, 2, 3}

	res := New(Transports{KindRNG: f}).Retrieve(context.Background(),
		[]Source{{Kind: KindRNG, URL: "rng://"}},
		Params{Paranoia: 100, Proxies: proxies(t, "p1", "p2"), Timeout: time.Second})

	assert.True(t, radon.Equal(radon.Bytes{1, 2, 3}, res.Values.At(0)))
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestRetrieve_BoundsInFlight(t *testing.T) {
	t.Parallel()

	f := newFake()
	var sources []Source
	for i := range 8 {
		u := fmt.Sprintf("http://source/%d", i)
		f.answers[u] = radon.NewInteger(1)
		f.delays[u] = 10 * time.Millisecond
		sources = append(sources, Source{Kind: KindHTTPGet, URL: u})
	}

	r := New(Transports{KindHTTPGet: f}, WithMaxInFlight(2), WithRateLimit(1000, 8))
	res := r.Retrieve(context.Background(), sources, Params{Paranoia: 51, AllowUnproxied: true, Timeout: 5 * time.Second})

	for i := range 8 {
		assert.True(t, radon.Equal(radon.NewInteger(1), res.Values.At(i)))
	}
	assert.LessOrEqual(t, f.peak.Load(), int64(2))
}

func TestRetrieve_RateLimitPastDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFake()
	f.answers["http://a"] = radon.NewInteger(1)
	f.answers["http://b"] = radon.NewInteger(1)
	sources := []Source{{Kind: KindHTTPGet, URL: "http://a"}, {Kind: KindHTTPGet, URL: "http://b"}}
	// One token every ten seconds: the second fetch cannot start in time.
	r := New(Transports{KindHTTPGet: f}, WithRateLimit(0.1, 1))

	// --- Act ---
	start := time.Now()
	res := r.Retrieve(context.Background(), sources,
		Params{Paranoia: 51, AllowUnproxied: true, Timeout: 200 * time.Millisecond})
	elapsed := time.Since(start)

	// --- Assert ---
	var ok, timedOut int
	for i := range 2 {
		v := res.Values.At(i)
		if radon.Equal(radon.NewInteger(1), v) {
			ok++
			continue
		}
		e, isErr := radon.AsError(v)
		require.True(t, isErr, "unexpected value %v", v)
		assert.Equal(t, radon.Timeout, e.Code)
		timedOut++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, timedOut)
	assert.EqualValues(t, 1, f.calls.Load())
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRetrieve_Metrics(t *testing.T) {
	t.Parallel()

	f := newFake()
	const u = "http://price"
	px := proxies(t, "p1")
	f.answers[u] = radon.NewInteger(1)
	f.answers[key(u, px[0])] = radon.NewInteger(2)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := New(Transports{KindHTTPGet: f}, WithMetrics(m))

	r.Retrieve(context.Background(), []Source{{Kind: KindHTTPGet, URL: u}},
		Params{Paranoia: 51, AllowUnproxied: true, Proxies: px, Timeout: time.Second})

	assert.InDelta(t, 2, testutil.ToFloat64(m.fetches.WithLabelValues("http-get", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.rejections), 0)
}
