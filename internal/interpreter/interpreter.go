package interpreter

import (
	"log/slog"
	"time"

	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

// Option configures a single execution.
type Option func(*config)

type config struct {
	catalog *operators.Registry
	partial bool
	tally   bool
	logger  *slog.Logger
}

// WithPartial records the output of every top-level call.
func WithPartial() Option {
	return func(c *config) { c.partial = true }
}

// WithTally runs the script as a tally: when the input is an array, filters
// and error dropping are tracked back to the original positions and the
// report carries the tally metadata.
func WithTally() Option {
	return func(c *config) { c.tally = true }
}

// WithCatalog replaces the default operator catalog.
func WithCatalog(r *operators.Registry) Option {
	return func(c *config) { c.catalog = r }
}

// WithLogger sets the logger used to report recovered operator panics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Execute runs s over input. It never panics and always returns a report.
func Execute(s *script.Script, input radon.Value, opts ...Option) *Report {
	cfg := config{catalog: operators.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	m := &machine{script: s, cfg: &cfg}
	m.ctx = &operators.Context{Eval: m.evalSub}
	m.sub = &operators.Context{Eval: m.evalSub}

	var n int
	if arr, ok := input.(radon.Array); ok && cfg.tally {
		n = arr.Len()
		m.ctx.Tracker = operators.NewTracker(n)
	}

	report := &Report{}
	var partial *[]radon.Value
	if cfg.partial {
		report.Partial = []radon.Value{input}
		partial = &report.Partial
	}
	report.Result, report.FailedCall = m.run(m.ctx, s.Calls(), input, partial)
	report.Elapsed = time.Since(start)

	if cfg.tally {
		report.Tally = tallyMetadata(m.ctx.Tracker, n)
	}
	return report
}

func tallyMetadata(t *operators.Tracker, n int) *TallyMetadata {
	meta := &TallyMetadata{Liars: []bool{}, Errors: []bool{}}
	if t == nil || n == 0 {
		return meta
	}
	meta.Liars, meta.Errors = t.Liars(), t.Errors()
	honest := 0
	for i := range meta.Liars {
		if !meta.Liars[i] && !meta.Errors[i] {
			honest++
		}
	}
	meta.Consensus = float64(honest) / float64(n)
	return meta
}

type machine struct {
	script *script.Script
	cfg    *config
	// ctx carries the tally tracker and is only used by top-level calls.
	ctx *operators.Context
	// sub never tracks: subscripts work on inner values, not on reveals.
	sub *operators.Context
}

func (m *machine) evalSub(id script.ID, in radon.Value) radon.Value {
	v, _ := m.run(m.sub, m.script.Sub(id), in, nil)
	return v
}

// run threads v through calls. It returns the final value and the index of
// the call that produced an unhandled error, or -1.
func (m *machine) run(ctx *operators.Context, calls []script.Call, v radon.Value, partial *[]radon.Value) (radon.Value, int) {
	errAt := -1
	for i, call := range calls {
		op, ok := m.cfg.catalog.Lookup(call.Op)
		if !ok {
			v = radon.NewError(radon.UnsupportedOperator, "unknown operator %s", call.Op)
			return v, i
		}
		if radon.IsError(v) && !op.AcceptsError {
			return v, errAt
		}
		if !op.Accepts(v.Kind()) {
			v = radon.NewError(radon.WrongType, "%s cannot be applied to %s", op.Name, v.Kind())
		} else {
			v = m.call(ctx, op, v, call.Args)
		}
		if partial != nil {
			*partial = append(*partial, v)
		}
		if radon.IsError(v) {
			errAt = i
		} else {
			errAt = -1
		}
	}
	return v, errAt
}

// call applies op, turning a panic into an Unknown error.
func (m *machine) call(ctx *operators.Context, op *operators.Operator, in radon.Value, args []script.Arg) (out radon.Value) {
	defer func() {
		if r := recover(); r != nil {
			m.cfg.logger.Error("Operator panicked.", "operator", op.Name, "panic", r)
			out = radon.NewError(radon.Unknown, "operator %s failed unexpectedly", op.Name)
		}
	}()
	out = op.Fn(ctx, in, args)
	if out == nil {
		return radon.NewError(radon.Unknown, "operator %s returned no value", op.Name)
	}
	return out
}
