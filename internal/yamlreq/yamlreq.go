// Package yamlreq reads request documents written in YAML. Documents share
// the shape of the HCL format:
//
//	requests:
//	  - name: btc-usd
//	    paranoia: 67
//	    sources:
//	      - kind: http-get
//	        url: https://api.example.com/ticker
//	        script: [StringParseJSONMap, [MapGetFloat, price]]
//	    aggregate:
//	      reducer: AverageMean
//	    tally:
//	      filters:
//	        - {name: DeviationStandard, args: [1.5]}
//	      reducer: AverageMean
//	      min_consensus: 0.66
//
// A file may hold several YAML documents separated by `---`.
package yamlreq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/request"
	"gopkg.in/yaml.v3"
)

// Document is the top level of a YAML request file.
type Document struct {
	Requests []RequestDef `yaml:"requests"`
}

// RequestDef is one entry of `requests`.
type RequestDef struct {
	Name           string        `yaml:"name"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	Paranoia       int           `yaml:"paranoia,omitempty"`
	Proxies        []string      `yaml:"proxies,omitempty"`
	AllowUnproxied *bool         `yaml:"allow_unproxied,omitempty"`
	Sources        []SourceDef   `yaml:"sources"`
	Aggregate      *StageDef     `yaml:"aggregate,omitempty"`
	Tally          *StageDef     `yaml:"tally,omitempty"`
}

// SourceDef is one entry of `sources`.
type SourceDef struct {
	Kind    string            `yaml:"kind"`
	URL     string            `yaml:"url,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Script  []any             `yaml:"script,omitempty"`
}

// StageDef is an aggregation or tally stage.
type StageDef struct {
	Script         []any       `yaml:"script,omitempty"`
	Filters        []FilterDef `yaml:"filters,omitempty"`
	Reducer        string      `yaml:"reducer,omitempty"`
	ErrorTolerance float64     `yaml:"error_tolerance,omitempty"`
	TieBreak       string      `yaml:"tie_break,omitempty"`
	MinConsensus   float64     `yaml:"min_consensus,omitempty"`
}

// FilterDef is one entry of a stage's `filters`.
type FilterDef struct {
	Name string `yaml:"name"`
	Args []any  `yaml:"args,omitempty"`
}

// Loader is the YAML implementation of request.Loader.
type Loader struct{}

// NewLoader creates a new YAML request loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ request.Loader = (*Loader)(nil)

// Load reads every file and translates all requests they define.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*request.Request, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	var out []*request.Request
	for _, file := range paths {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		docs, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		for _, doc := range docs {
			for _, def := range doc.Requests {
				r := def.toRequest()
				r.File = file
				out = append(out, r)
			}
		}
	}

	logger.Debug("YAML loading complete.", "requests", len(out))
	return out, nil
}

// Parse decodes every document in data. Unknown fields are rejected.
func Parse(data []byte) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var docs []Document
	for {
		var doc Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func (d RequestDef) toRequest() *request.Request {
	r := &request.Request{
		Name:           d.Name,
		Timeout:        d.Timeout,
		Paranoia:       d.Paranoia,
		Proxies:        d.Proxies,
		AllowUnproxied: d.AllowUnproxied,
		Aggregate:      d.Aggregate.toStage(),
		Tally:          d.Tally.toStage(),
	}
	for _, s := range d.Sources {
		r.Sources = append(r.Sources, &request.Source{
			Kind:    s.Kind,
			URL:     s.URL,
			Body:    s.Body,
			Headers: s.Headers,
			Script:  s.Script,
		})
	}
	return r
}

func (s *StageDef) toStage() *request.Stage {
	if s == nil {
		return nil
	}
	st := &request.Stage{
		Script:         s.Script,
		Reducer:        s.Reducer,
		ErrorTolerance: s.ErrorTolerance,
		TieBreak:       s.TieBreak,
		MinConsensus:   s.MinConsensus,
	}
	for _, f := range s.Filters {
		st.Filters = append(st.Filters, &request.Filter{Name: f.Name, Args: f.Args})
	}
	return st
}
