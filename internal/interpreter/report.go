package interpreter

import (
	"time"

	"github.com/specialistvlad/radgo/internal/radon"
)

// Report is the outcome of running a script.
type Report struct {
	Result radon.Value
	// FailedCall is the index of the top-level call that produced an
	// unhandled error, or -1.
	FailedCall int
	// Partial holds the output of every top-level call when WithPartial is
	// used; Partial[0] is the input.
	Partial []radon.Value
	Elapsed time.Duration
	Tally   *TallyMetadata
}

// TallyMetadata describes how the witnesses behind a tallied array fared.
type TallyMetadata struct {
	Liars     []bool
	Errors    []bool
	Consensus float64
}

// Failed reports whether the script ended in an unhandled error.
func (r *Report) Failed() bool {
	return radon.IsError(r.Result)
}

// Encode returns the canonical bytes of the report. Elapsed is left out so
// that equal runs encode identically.
func (r *Report) Encode() ([]byte, error) {
	doc := map[string]any{
		"result":      radon.ToCBOR(r.Result),
		"failed_call": int64(r.FailedCall),
	}
	if r.Partial != nil {
		partial := make([]any, len(r.Partial))
		for i, v := range r.Partial {
			partial[i] = radon.ToCBOR(v)
		}
		doc["partial"] = partial
	}
	if r.Tally != nil {
		doc["tally"] = map[string]any{
			"liars":     r.Tally.Liars,
			"errors":    r.Tally.Errors,
			"consensus": r.Tally.Consensus,
		}
	}
	return radon.MarshalCanonical(doc)
}
