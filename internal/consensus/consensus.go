// Package consensus runs the aggregation and tally stages of a data request.
//
// Aggregation reduces the values retrieved by one node. Tally reduces the
// values revealed by many witnesses, tracks which of them were filtered out
// or failed, and refuses results that too few witnesses support.
package consensus

import (
	"github.com/specialistvlad/radgo/internal/interpreter"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/script"
)

// Aggregate runs the aggregation script over the retrieval array. Error
// tolerance is part of the script itself.
func Aggregate(s *script.Script, values radon.Array, opts ...interpreter.Option) *interpreter.Report {
	return interpreter.Execute(s, values, opts...)
}

// Tally runs the tally script over the reveals. The result is replaced by
// InsufficientConsensus when the share of honest witnesses is below
// minConsensus; the comparison is inclusive.
func Tally(s *script.Script, reveals radon.Array, minConsensus float64, opts ...interpreter.Option) *interpreter.Report {
	if reveals.Len() == 0 {
		return &interpreter.Report{
			Result:     radon.NewError(radon.NoReveals, "no reveals to tally"),
			FailedCall: -1,
			Tally:      &interpreter.TallyMetadata{Liars: []bool{}, Errors: []bool{}},
		}
	}

	opts = append(append([]interpreter.Option(nil), opts...), interpreter.WithTally())
	report := interpreter.Execute(s, reveals, opts...)
	if report.Failed() {
		return report
	}
	if report.Tally.Consensus < minConsensus {
		report.Result = radon.NewError(radon.InsufficientConsensus,
			"%.2f%% of witnesses agree, %.2f%% required", report.Tally.Consensus*100, minConsensus*100)
	}
	return report
}
