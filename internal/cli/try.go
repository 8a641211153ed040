package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/radgo/internal/app"
	"github.com/specialistvlad/radgo/internal/format"
	"github.com/specialistvlad/radgo/internal/radon"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/witness"
	"github.com/spf13/cobra"
)

type tryFlags struct {
	request string
	inputs  []string
	output  string
	partial bool
}

func (r *root) tryCmd() *cobra.Command {
	var f tryFlags
	cmd := &cobra.Command{
		Use:   "try <path>...",
		Short: "Run a request locally: retrieve, aggregate and tally the node's own result",
		Long: "Try loads request documents (.hcl, .yaml, .yml) from files or directories and\n" +
			"runs one request end to end. Source bodies can be injected with --input to\n" +
			"test scripts without touching the network.",
		Example: "  radgo try requests/ --request btc-usd\n" +
			"  radgo try btc.hcl --input 0='{\"price\": 100}' --partial",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runTry(cmd, args, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.request, "request", "r", "", "Name of the request to run. Optional when the paths hold a single request.")
	fl.StringArrayVarP(&f.inputs, "input", "i", nil, "Inject a source body as INDEX=BODY instead of fetching it. Repeatable.")
	fl.StringVarP(&f.output, "output", "o", "table", "Output format. Options: 'table', 'markdown' or 'json'.")
	fl.BoolVar(&f.partial, "partial", false, "Show the value after every call of the aggregation and tally scripts.")
	return cmd
}

func (r *root) runTry(cmd *cobra.Command, paths []string, f tryFlags) error {
	mode, table, err := parseMode(f.output)
	if err != nil {
		return err
	}
	inputs, err := parseInputs(f.inputs)
	if err != nil {
		return err
	}

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
	for i := range inputs {
		if i >= len(req.Sources) {
			return &ExitError{Code: 2, Message: fmt.Sprintf("input %d: request %q has %d sources", i, req.Name, len(req.Sources))}
		}
	}

	var opts []witness.RunOption
	if len(inputs) > 0 {
		opts = append(opts, witness.WithInputs(inputs))
	}
	if f.partial {
		opts = append(opts, witness.WithPartial())
	}
	out := a.Pipeline().Try(ctx, req, opts...)

	w := cmd.OutOrStdout()
	if !table {
		return format.JSON(w, format.NewOutcomeDoc(out))
	}
	if err := format.Outcome(w, out, mode); err != nil {
		return err
	}
	if f.partial {
		if err := format.Partial(w, witness.StageAggregation, out.Aggregation, mode); err != nil {
			return err
		}
		return format.Partial(w, witness.StageTally, out.Tally, mode)
	}
	return nil
}

// selectRequest loads paths and picks the named request, or the only one.
func selectRequest(ctx context.Context, a *app.App, name string, paths []string) (*request.Compiled, error) {
	if name != "" {
		return a.LoadOne(ctx, name, paths...)
	}
	reqs, err := a.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	switch len(reqs) {
	case 0:
		return nil, fmt.Errorf("no requests found in %s", strings.Join(paths, ", "))
	case 1:
		return reqs[0], nil
	}
	names := make([]string, len(reqs))
	for i, c := range reqs {
		names[i] = c.Name
	}
	return nil, &ExitError{Code: 2, Message: fmt.Sprintf("found %d requests, pick one with --request: %s", len(reqs), strings.Join(names, ", "))}
}

// parseInputs reads INDEX=BODY pairs. Bodies are injected as strings, the
// same as a fetched HTTP body.
func parseInputs(raw []string) (map[int]radon.Value, error) {
	inputs := make(map[int]radon.Value, len(raw))
	for _, in := range raw {
		idx, body, ok := strings.Cut(in, "=")
		if !ok {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("invalid input %q: expected INDEX=BODY", in)}
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("invalid input %q: source index must be a non-negative integer", in)}
		}
		if _, dup := inputs[i]; dup {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("input for source %d given twice", i)}
		}
		inputs[i] = radon.String(body)
	}
	return inputs, nil
}
