package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/interpreter"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/transport"
)

// Fetcher performs one fetch. Implementations live in the transport package.
type Fetcher interface {
	Fetch(ctx context.Context, req transport.Request) (radon.Value, error)
}

// Transports maps source kinds to their fetchers.
type Transports map[Kind]Fetcher

// DefaultMaxInFlight bounds concurrent fetches when no limit is configured.
const DefaultMaxInFlight = 16

// Retriever runs retrieval stages. It is safe for concurrent use; the
// in-flight limit and the rate limiter are shared by every request it runs.
type Retriever struct {
	transports Transports
	sem        *semaphore.Weighted
	limiter    *rate.Limiter
	metrics    *Metrics
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithMaxInFlight bounds the number of fetches running at once.
func WithMaxInFlight(n int64) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithRateLimit makes fetches wait for a token; limit is in fetches per
// second and 0 disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(r *Retriever) {
		if limit <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithMetrics records fetch metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Retriever) { r.metrics = m }
}

// New creates a Retriever over the given transports.
func New(transports Transports, opts ...Option) *Retriever {
	r := &Retriever{
		transports: transports,
		sem:        semaphore.NewWeighted(DefaultMaxInFlight),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type retrieveConfig struct {
	inputs map[int]radon.Value
}

// RetrieveOption configures a single retrieval.
type RetrieveOption func(*retrieveConfig)

// WithInputs replaces fetching for the given source indices. The value is fed
// to the source script as if it were the body.
func WithInputs(inputs map[int]radon.Value) RetrieveOption {
	return func(c *retrieveConfig) { c.inputs = inputs }
}

// route is one network path to a source.
type route struct {
	label string
	req   func(transport.Request) transport.Request
}

// Retrieve fetches every source over every path and resolves it through the
// paranoia check. It never returns a Go error: failures become radon errors
// in the result array.
func (r *Retriever) Retrieve(ctx context.Context, sources []Source, p Params, opts ...RetrieveOption) *Result {
	var cfg retrieveConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := ctxlog.FromContext(ctx).With("component", "retrieval")

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	reports := make([]SourceReport, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		reports[i] = SourceReport{Index: i, Kind: src.Kind, URL: src.URL}
		if in, ok := cfg.inputs[i]; ok {
			v := r.runScript(src, in)
			reports[i].Paths = []PathResult{{Value: v}}
			reports[i].Injected = true
			continue
		}
		paths := r.paths(src.Kind, p)
		reports[i].Paths = make([]PathResult, len(paths))
		for j, px := range paths {
			reports[i].Paths[j].Proxy = px.label
			g.Go(func() error {
				reports[i].Paths[j].Value = r.fetch(ctx, logger, src, px)
				return nil
			})
		}
	}
	_ = g.Wait()

	values := make([]radon.Value, len(sources))
	for i := range reports {
		rep := &reports[i]
		pathValues := make([]radon.Value, len(rep.Paths))
		for j, pr := range rep.Paths {
			pathValues[j] = pr.Value
		}
		if len(pathValues) == 0 {
			rep.Value = radon.NewError(radon.InsufficientConsensus, "no network paths available")
		} else {
			rep.Value, rep.Agree, rep.Accepted = Agree(pathValues, p.Paranoia)
		}
		if !rep.Accepted && len(pathValues) > 0 {
			r.metrics.observeRejection()
			logger.Warn("Paths disagree on source.", "source", i, "agree", rep.Agree, "paths", len(pathValues))
		}
		values[i] = rep.Value
	}

	return &Result{Values: radon.NewArray(values...), Sources: reports}
}

// paths lists the routes a source is fetched over.
func (r *Retriever) paths(kind Kind, p Params) []route {
	direct := route{label: "", req: func(req transport.Request) transport.Request { return req }}
	if !kind.proxied() {
		return []route{direct}
	}
	var out []route
	if p.AllowUnproxied {
		out = append(out, direct)
	}
	for _, proxy := range p.Proxies {
		out = append(out, route{
			label: proxy.Redacted(),
			req: func(req transport.Request) transport.Request {
				req.Proxy = proxy
				return req
			},
		})
	}
	return out
}

func (r *Retriever) fetch(ctx context.Context, logger *slog.Logger, src Source, px route) radon.Value {
	start := time.Now()
	v := r.fetchBody(ctx, logger, src, px)
	if !radon.IsError(v) {
		v = r.runScript(src, v)
	}

	outcome := "ok"
	if e, ok := radon.AsError(v); ok {
		outcome = e.Code.String()
	}
	r.metrics.observeFetch(src.Kind, outcome, time.Since(start).Seconds())
	return v
}

func (r *Retriever) fetchBody(ctx context.Context, logger *slog.Logger, src Source, px route) radon.Value {
	f, ok := r.transports[src.Kind]
	if !ok {
		return radon.NewError(radon.MalformedSource, "no transport for kind %q", src.Kind)
	}
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return classify(err)
	}
	defer r.sem.Release(1)
	if err := r.throttle(ctx); err != nil {
		return classify(err)
	}

	req := px.req(transport.Request{
		Kind:    string(src.Kind),
		URL:     src.URL,
		Body:    src.Body,
		Headers: src.Headers,
	})
	body, err := f.Fetch(ctx, req)
	if err != nil {
		logger.Debug("Fetch failed.", "url", src.URL, "proxy", px.label, "error", err)
		return classify(err)
	}
	return body
}

// throttle waits for the rate limiter until the fetch deadline. Waiting past
// the deadline counts as a timeout rather than a transport failure.
func (r *Retriever) throttle(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	res := r.limiter.Reserve()
	if !res.OK() {
		return context.DeadlineExceeded
	}
	delay := res.Delay()
	if delay == 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	}
}

func (r *Retriever) runScript(src Source, body radon.Value) radon.Value {
	if src.Script == nil {
		return body
	}
	return interpreter.Execute(src.Script, body).Result
}

// classify turns a fetch failure into a radon error. Messages are fixed so
// that every node reports the same value for the same failure.
func classify(err error) radon.Value {
	var statusErr *transport.StatusError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return radon.NewError(radon.Timeout, "deadline exceeded")
	case errors.As(err, &statusErr):
		return radon.NewError(radon.HTTPStatus, "status %d", statusErr.Code)
	case errors.Is(err, transport.ErrMalformed):
		return radon.NewError(radon.MalformedSource, "malformed response")
	case errors.Is(err, transport.ErrInvalidRequest):
		return radon.NewError(radon.WrongArguments, "invalid source request")
	case errors.As(err, &netErr) && netErr.Timeout():
		return radon.NewError(radon.Timeout, "deadline exceeded")
	}
	return radon.NewError(radon.TransportFailure, "transport failure")
}
