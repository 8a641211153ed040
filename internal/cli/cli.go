package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/radgo/internal/app"
	"github.com/specialistvlad/radgo/internal/format"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	settings  string
	logLevel  string
	logFormat string
}

// root carries state shared by the commands of one tree.
type root struct {
	flags globalFlags
	errW  io.Writer
}

// NewRootCmd builds the command tree. Command output goes to outW and logs
// to errW.
func NewRootCmd(outW, errW io.Writer) *cobra.Command {
	r := &root{errW: errW}
	cmd := &cobra.Command{
		Use:   "radgo",
		Short: "Retrieve, aggregate and tally data requests like an oracle witness",
		Long: "radgo runs the data-request pipeline of an oracle node: it fetches sources,\n" +
			"resolves them through paranoia checks, and reduces the results with RADON scripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)

	f := cmd.PersistentFlags()
	f.StringVarP(&r.flags.settings, "config", "c", "", "Path to a YAML file with node settings.")
	f.StringVar(&r.flags.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	f.StringVar(&r.flags.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	cmd.AddCommand(
		r.tryCmd(),
		r.tallyCmd(),
		encodeCmd(),
		decodeCmd(),
		fmtCmd(),
		r.serveCmd(),
	)
	return cmd
}

// Execute runs the command tree with args. Usage errors become ExitError
// with code 2.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	cmd := NewRootCmd(outW, errW)
	cmd.SetArgs(args)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})
	return cmd.ExecuteContext(ctx)
}

// newApp builds the App for a command.
func (r *root) newApp(healthcheckPort int) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		SettingsPath:    r.flags.settings,
		LogLevel:        r.flags.logLevel,
		LogFormat:       r.flags.logFormat,
		HealthcheckPort: healthcheckPort,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return app.NewApp(r.errW, cfg)
}

// parseMode maps an --output value to a table mode; json reports false.
func parseMode(output string) (format.Mode, bool, error) {
	switch strings.ToLower(output) {
	case "table", "":
		return format.ASCII, true, nil
	case "markdown", "md":
		return format.Markdown, true, nil
	case "json":
		return 0, false, nil
	}
	return 0, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid output %q: must be 'table', 'markdown' or 'json'", output)}
}
