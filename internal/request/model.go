package request

import "time"

// Request is one data request as written in a document. Zero values of the
// retrieval settings mean "use the node settings".
type Request struct {
	Name           string
	File           string
	Timeout        time.Duration
	Paranoia       int
	Proxies        []string
	AllowUnproxied *bool
	Sources        []*Source
	Aggregate      *Stage
	Tally          *Stage
}

// Source is the format-agnostic representation of a `source` block.
type Source struct {
	Kind    string
	URL     string
	Body    string
	Headers map[string]string
	Script  []any
}

// Stage is an aggregation or tally stage. It is written either as a full
// Script or with the Filters/Reducer shorthand.
type Stage struct {
	Script         []any
	Filters        []*Filter
	Reducer        string
	ErrorTolerance float64
	TieBreak       string
	MinConsensus   float64
}

// Filter is one filter of the stage shorthand.
type Filter struct {
	Name string
	Args []any
}

// Calls returns the script of the stage, expanding the shorthand into
// ArrayFilterBy calls followed by a single ArrayReduce.
func (s *Stage) Calls() []any {
	if s == nil {
		return nil
	}
	if len(s.Script) > 0 {
		return s.Script
	}
	calls := make([]any, 0, len(s.Filters)+1)
	for _, f := range s.Filters {
		call := append([]any{"ArrayFilterBy", f.Name}, f.Args...)
		calls = append(calls, call)
	}
	if s.Reducer != "" {
		reduce := []any{"ArrayReduce", s.Reducer}
		if s.ErrorTolerance != 0 || s.TieBreak != "" {
			reduce = append(reduce, s.ErrorTolerance)
		}
		if s.TieBreak != "" {
			reduce = append(reduce, s.TieBreak)
		}
		calls = append(calls, reduce)
	}
	return calls
}
