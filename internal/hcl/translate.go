package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/radgo/internal/request"
)

// translateRequest converts a decoded request block into the agnostic model.
func translateRequest(b *requestBlock, ctx *hcl.EvalContext) (*request.Request, error) {
	r := &request.Request{
		Name:           b.Name,
		Proxies:        b.Proxies,
		AllowUnproxied: b.AllowUnproxied,
	}
	if b.Paranoia != nil {
		r.Paranoia = *b.Paranoia
	}
	if b.Timeout != nil {
		d, err := time.ParseDuration(*b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		r.Timeout = d
	}

	for i, s := range b.Sources {
		calls, err := listAttr(s.Script, ctx)
		if err != nil {
			return nil, fmt.Errorf("source %d script: %w", i, err)
		}
		r.Sources = append(r.Sources, &request.Source{
			Kind:    s.Kind,
			URL:     s.URL,
			Body:    s.Body,
			Headers: s.Headers,
			Script:  calls,
		})
	}

	var err error
	if r.Aggregate, err = translateStage(b.Aggregate, ctx); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if r.Tally, err = translateStage(b.Tally, ctx); err != nil {
		return nil, fmt.Errorf("tally: %w", err)
	}
	return r, nil
}

func translateStage(b *stageBlock, ctx *hcl.EvalContext) (*request.Stage, error) {
	if b == nil {
		return nil, nil
	}
	calls, err := listAttr(b.Script, ctx)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	st := &request.Stage{
		Script:         calls,
		Reducer:        b.Reducer,
		ErrorTolerance: b.ErrorTolerance,
		TieBreak:       b.TieBreak,
		MinConsensus:   b.MinConsensus,
	}
	for _, f := range b.Filters {
		args, err := listAttr(f.Args, ctx)
		if err != nil {
			return nil, fmt.Errorf("filter %q args: %w", f.Name, err)
		}
		st.Filters = append(st.Filters, &request.Filter{Name: f.Name, Args: args})
	}
	return st, nil
}

// listAttr evaluates an optional list-valued attribute. A missing attribute
// yields nil.
func listAttr(expr hcl.Expression, ctx *hcl.EvalContext) ([]any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, err
	}
	list, ok := native.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %s", val.Type().FriendlyName())
	}
	return list, nil
}
