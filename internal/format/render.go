package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/specialistvlad/radgo/internal/interpreter"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/witness"
)

const cellWidth = 48

// Outcome writes the tables describing one pipeline run.
func Outcome(w io.Writer, o *witness.Outcome, m Mode) error {
	sources := NewTable(m)
	sources.Title(fmt.Sprintf("%s · run %s", o.Request, o.RunID))
	sources.Header("#", "Kind", "URL", "Paths", "Agree", "Value")
	sources.Columns(
		ColumnConfig{Number: 1, Align: AlignRight},
		ColumnConfig{Number: 3, MaxWidth: cellWidth},
		ColumnConfig{Number: 5, Align: AlignCenter},
	)
	for _, s := range o.Retrieval.Sources {
		paths := fmt.Sprint(len(s.Paths))
		if s.Injected {
			paths = "input"
		}
		sources.Row(s.Index, string(s.Kind), Truncate(s.URL, cellWidth), paths,
			fmt.Sprintf("%d %s", s.Agree, BoolMark(s.Accepted)), Preview(s.Value, cellWidth))
	}

	stages := NewTable(m)
	stages.Header("Stage", "Result", "Failed call", "Elapsed")
	stages.Columns(ColumnConfig{Number: 3, Align: AlignRight}, ColumnConfig{Number: 4, Align: AlignRight})
	stageRow(stages, witness.StageAggregation, o.Aggregation)
	if o.Tally != nil {
		stageRow(stages, witness.StageTally, o.Tally)
	}

	_, err := fmt.Fprintf(w, "%s\n%s\nTotal: %s\n", sources.String(), stages.String(), FmtDuration(o.Elapsed))
	return err
}

func stageRow(t TableBuilder, stage string, r *interpreter.Report) {
	failed := "-"
	if r.FailedCall >= 0 {
		failed = fmt.Sprint(r.FailedCall)
	}
	t.Row(stage, Preview(r.Result, cellWidth), failed, FmtDuration(r.Elapsed))
}

// Report writes a tally report: the result and the fate of every reveal.
func Report(w io.Writer, r *interpreter.Report, reveals radon.Array, m Mode) error {
	t := NewTable(m)
	t.Header("#", "Reveal", "Liar", "Error")
	t.Columns(ColumnConfig{Number: 1, Align: AlignRight}, ColumnConfig{Number: 3, Align: AlignCenter}, ColumnConfig{Number: 4, Align: AlignCenter})
	for i, v := range reveals.Values() {
		liar, failed := false, false
		if r.Tally != nil && i < len(r.Tally.Liars) {
			liar, failed = r.Tally.Liars[i], r.Tally.Errors[i]
		}
		t.Row(i, Preview(v, cellWidth), mark(liar), mark(failed))
	}

	var b strings.Builder
	b.WriteString(t.String())
	fmt.Fprintf(&b, "\nResult: %s\n", r.Result)
	if r.Tally != nil {
		fmt.Fprintf(&b, "Consensus: %.2f%%\n", r.Tally.Consensus*100)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Partial writes the value after every top-level call of a stage. Row 0 is
// the stage input.
func Partial(w io.Writer, stage string, r *interpreter.Report, m Mode) error {
	if r == nil || len(r.Partial) == 0 {
		return nil
	}
	t := NewTable(m)
	t.Title(stage)
	t.Header("Call", "Value")
	t.Columns(ColumnConfig{Number: 1, Align: AlignRight})
	for i, v := range r.Partial {
		call := fmt.Sprint(i)
		if i == 0 {
			call = "input"
		}
		t.Row(call, Preview(v, cellWidth))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func mark(v bool) string {
	if v {
		return BoolMark(true)
	}
	return ""
}

// SourceDoc is the JSON form of a retrieval source.
type SourceDoc struct {
	Index    int      `json:"index"`
	Kind     string   `json:"kind"`
	URL      string   `json:"url,omitempty"`
	Paths    []any    `json:"paths"`
	Proxies  []string `json:"proxies"`
	Agree    int      `json:"agree"`
	Accepted bool     `json:"accepted"`
	Injected bool     `json:"injected,omitempty"`
	Value    any      `json:"value"`
}

// ReportDoc is the JSON form of an interpreter report.
type ReportDoc struct {
	Result     any      `json:"result"`
	FailedCall int      `json:"failed_call"`
	Partial    []any    `json:"partial,omitempty"`
	ElapsedMS  float64  `json:"elapsed_ms"`
	Liars      []bool   `json:"liars,omitempty"`
	Errors     []bool   `json:"errors,omitempty"`
	Consensus  *float64 `json:"consensus,omitempty"`
}

// OutcomeDoc is the JSON form of a pipeline run.
type OutcomeDoc struct {
	RunID       string      `json:"run_id"`
	Request     string      `json:"request"`
	Started     string      `json:"started"`
	ElapsedMS   float64     `json:"elapsed_ms"`
	Sources     []SourceDoc `json:"sources"`
	Aggregation *ReportDoc  `json:"aggregation"`
	Tally       *ReportDoc  `json:"tally,omitempty"`
	Result      any         `json:"result"`
}

// NewOutcomeDoc converts an outcome into its JSON form.
func NewOutcomeDoc(o *witness.Outcome) *OutcomeDoc {
	doc := &OutcomeDoc{
		RunID:       o.RunID,
		Request:     o.Request,
		Started:     o.Started.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		ElapsedMS:   ms(o.Elapsed.Seconds()),
		Aggregation: NewReportDoc(o.Aggregation),
		Tally:       NewReportDoc(o.Tally),
		Result:      JSONValue(o.Result()),
	}
	if o.Retrieval != nil {
		for _, s := range o.Retrieval.Sources {
			sd := SourceDoc{
				Index:    s.Index,
				Kind:     string(s.Kind),
				URL:      s.URL,
				Agree:    s.Agree,
				Accepted: s.Accepted,
				Injected: s.Injected,
				Value:    JSONValue(s.Value),
			}
			for _, p := range s.Paths {
				sd.Paths = append(sd.Paths, JSONValue(p.Value))
				proxy := p.Proxy
				if proxy == "" {
					proxy = "direct"
				}
				sd.Proxies = append(sd.Proxies, proxy)
			}
			doc.Sources = append(doc.Sources, sd)
		}
	}
	return doc
}

// NewReportDoc converts a report into its JSON form. It returns nil for a
// nil report.
func NewReportDoc(r *interpreter.Report) *ReportDoc {
	if r == nil {
		return nil
	}
	doc := &ReportDoc{
		Result:     JSONValue(r.Result),
		FailedCall: r.FailedCall,
		ElapsedMS:  ms(r.Elapsed.Seconds()),
	}
	for _, v := range r.Partial {
		doc.Partial = append(doc.Partial, JSONValue(v))
	}
	if r.Tally != nil {
		doc.Liars, doc.Errors = r.Tally.Liars, r.Tally.Errors
		c := r.Tally.Consensus
		doc.Consensus = &c
	}
	return doc
}

func ms(seconds float64) float64 {
	return float64(int64(seconds*1e6)) / 1e3
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
