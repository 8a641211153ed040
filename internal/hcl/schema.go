package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a request document.
type fileRoot struct {
	Requests []*requestBlock `hcl:"request,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// requestBlock is a `request "<name>"` block.
type requestBlock struct {
	Name           string         `hcl:"name,label"`
	Timeout        *string        `hcl:"timeout,optional"`
	Paranoia       *int           `hcl:"paranoia,optional"`
	Proxies        []string       `hcl:"proxies,optional"`
	AllowUnproxied *bool          `hcl:"allow_unproxied,optional"`
	Sources        []*sourceBlock `hcl:"source,block"`
	Aggregate      *stageBlock    `hcl:"aggregate,block"`
	Tally          *stageBlock    `hcl:"tally,block"`
}

// sourceBlock is a `source "<kind>"` block.
type sourceBlock struct {
	Kind    string            `hcl:"kind,label"`
	URL     string            `hcl:"url,optional"`
	Body    string            `hcl:"body,optional"`
	Headers map[string]string `hcl:"headers,optional"`
	Script  hcl.Expression    `hcl:"script,optional"`
}

// stageBlock is an `aggregate` or `tally` block.
type stageBlock struct {
	Script         hcl.Expression `hcl:"script,optional"`
	Filters        []*filterBlock `hcl:"filter,block"`
	Reducer        string         `hcl:"reducer,optional"`
	ErrorTolerance float64        `hcl:"error_tolerance,optional"`
	TieBreak       string         `hcl:"tie_break,optional"`
	MinConsensus   float64        `hcl:"min_consensus,optional"`
}

// filterBlock is a `filter "<name>"` block inside a stage.
type filterBlock struct {
	Name string         `hcl:"name,label"`
	Args hcl.Expression `hcl:"args,optional"`
}
