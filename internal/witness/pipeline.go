package witness

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/radgo/internal/consensus"
	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/interpreter"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/retrieval"
)

// Stage names used in logs and metrics.
const (
	StageRetrieval   = "retrieval"
	StageAggregation = "aggregation"
	StageTally       = "tally"
)

// Outcome is everything one pipeline run produced.
type Outcome struct {
	RunID       string
	Request     string
	Started     time.Time
	Elapsed     time.Duration
	Retrieval   *retrieval.Result
	Aggregation *interpreter.Report
	// Tally is only set by Try.
	Tally *interpreter.Report
}

// Result is the final value of the run: the tally result when there is
// one, otherwise the aggregated value.
func (o *Outcome) Result() radon.Value {
	if o.Tally != nil {
		return o.Tally.Result
	}
	return o.Aggregation.Result
}

// Pipeline runs compiled requests. It is safe for concurrent use; runs share
// only the Retriever's rate limiter and in-flight bound.
type Pipeline struct {
	retriever *retrieval.Retriever
	catalog   *operators.Registry
	metrics   *Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCatalog replaces the default operator catalog.
func WithCatalog(r *operators.Registry) Option {
	return func(p *Pipeline) { p.catalog = r }
}

// WithMetrics records stage metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a pipeline fetching through r.
func New(r *retrieval.Retriever, opts ...Option) *Pipeline {
	p := &Pipeline{retriever: r, catalog: operators.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type runConfig struct {
	inputs  map[int]radon.Value
	partial bool
}

// RunOption configures a single run.
type RunOption func(*runConfig)

// WithInputs injects source bodies by index instead of fetching them.
func WithInputs(inputs map[int]radon.Value) RunOption {
	return func(c *runConfig) { c.inputs = inputs }
}

// WithPartial keeps the intermediate value of every call in the reports.
func WithPartial() RunOption {
	return func(c *runConfig) { c.partial = true }
}

// Run retrieves every source of req and aggregates the results.
func (p *Pipeline) Run(ctx context.Context, req *request.Compiled, opts ...RunOption) *Outcome {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	out := &Outcome{RunID: uuid.NewString(), Request: req.Name, Started: time.Now()}
	ctx, logger := ctxlog.With(ctx, "run_id", out.RunID, "request", req.Name)
	logger.Debug("Pipeline run started.", "sources", len(req.Sources))

	var retrieveOpts []retrieval.RetrieveOption
	if cfg.inputs != nil {
		retrieveOpts = append(retrieveOpts, retrieval.WithInputs(cfg.inputs))
	}
	start := time.Now()
	out.Retrieval = p.retriever.Retrieve(ctx, req.Sources, req.Params, retrieveOpts...)
	p.metrics.observe(StageRetrieval, time.Since(start), nil)
	logger.Debug("Retrieval finished.", "elapsed", time.Since(start))

	out.Aggregation = consensus.Aggregate(req.Aggregate, out.Retrieval.Values, p.execOpts(logger, cfg.partial)...)
	p.metrics.observe(StageAggregation, out.Aggregation.Elapsed, out.Aggregation)
	if out.Aggregation.Failed() {
		logger.Warn("Aggregation ended in an error.", "result", out.Aggregation.Result.String(), "failed_call", out.Aggregation.FailedCall)
	}

	out.Elapsed = time.Since(out.Started)
	logger.Info("Pipeline run finished.", "result", out.Result().String(), "elapsed", out.Elapsed)
	return out
}

// Try is a local dry run: it runs the pipeline and then tallies the node's
// own aggregated value as if it were the only reveal.
func (p *Pipeline) Try(ctx context.Context, req *request.Compiled, opts ...RunOption) *Outcome {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	out := p.Run(ctx, req, opts...)
	logger := ctxlog.FromContext(ctx).With("run_id", out.RunID, "request", req.Name)

	reveals := radon.NewArray(out.Aggregation.Result)
	out.Tally = consensus.Tally(req.Tally, reveals, req.MinConsensus, p.execOpts(logger, cfg.partial)...)
	p.metrics.observe(StageTally, out.Tally.Elapsed, out.Tally)
	out.Elapsed = time.Since(out.Started)
	return out
}

// TallyReveals tallies reveals submitted by a committee of witnesses.
func (p *Pipeline) TallyReveals(ctx context.Context, req *request.Compiled, reveals radon.Array) *interpreter.Report {
	logger := ctxlog.FromContext(ctx).With("request", req.Name)
	report := consensus.Tally(req.Tally, reveals, req.MinConsensus, p.execOpts(logger, false)...)
	p.metrics.observe(StageTally, report.Elapsed, report)
	logger.Info("Tally finished.", "reveals", reveals.Len(), "result", report.Result.String(), "consensus", report.Tally.Consensus)
	return report
}

func (p *Pipeline) execOpts(logger *slog.Logger, partial bool) []interpreter.Option {
	opts := []interpreter.Option{interpreter.WithCatalog(p.catalog), interpreter.WithLogger(logger)}
	if partial {
		opts = append(opts, interpreter.WithPartial())
	}
	return opts
}
