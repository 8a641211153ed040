package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/radgo/internal/format"
	"github.com/specialistvlad/radgo/internal/operators"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/spf13/cobra"
)

type tallyFlags struct {
	request string
	reveals []string
	output  string
}

func (r *root) tallyCmd() *cobra.Command {
	var f tallyFlags
	cmd := &cobra.Command{
		Use:   "tally <path>...",
		Short: "Tally reveals from a committee of witnesses",
		Long: "Tally runs the tally stage of a request over the given reveals and reports\n" +
			"the result, the consensus share and which witnesses were flagged as liars or\n" +
			"errors. A reveal is a JSON value or 0x-prefixed CBOR.",
		Example: "  radgo tally btc.hcl --reveal 100 --reveal 101 --reveal 500",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runTally(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.request, "request", "r", "", "Name of the request to tally. Optional when the paths hold a single request.")
	fl.StringArrayVar(&f.reveals, "reveal", nil, "A revealed value. Repeatable, in witness order.")
	fl.StringVarP(&f.output, "output", "o", "table", "Output format. Options: 'table', 'markdown' or 'json'.")
	return cmd
}

func (r *root) runTally(cmd *cobra.Command, paths []string, f tallyFlags) error {
	mode, table, err := parseMode(f.output)
	if err != nil {
		return err
	}
	vals := make([]radon.Value, len(f.reveals))
	for i, raw := range f.reveals {
		if vals[i], err = parseValue(raw); err != nil {
			return &ExitError{Code: 2, Message: fmt.Sprintf("reveal %d: %v", i, err)}
		}
	}
	reveals := radon.NewArray(vals...)

	a, err := r.newApp(0)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.Context(cmd.Context())

	req, err := selectRequest(ctx, a, f.request, paths)
	if err != nil {
		return err
	}
	report := a.Pipeline().TallyReveals(ctx, req, reveals)

	w := cmd.OutOrStdout()
	if !table {
		return format.JSON(w, format.NewReportDoc(report))
	}
	return format.Report(w, report, reveals, mode)
}

// parseValue reads a value written as JSON or as 0x-prefixed CBOR.
func parseValue(raw string) (radon.Value, error) {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "0x"); ok {
		data, err := hex.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return radon.Decode(data)
	}
	v := operators.ParseJSON(raw)
	if e, ok := radon.AsError(v); ok && e.Code == radon.ParseError {
		return nil, errors.New(e.Message)
	}
	return v, nil
}
