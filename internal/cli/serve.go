package cli

import (
	"github.com/spf13/cobra"
)

func (r *root) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve <path>...",
		Short: "Run requests periodically and expose their latest outcomes",
		Long: "Serve loads request documents and runs every request once per interval\n" +
			"(see the 'interval' and 'workers' settings). With --healthcheck-port it serves\n" +
			"/health, /metrics and /reports over HTTP.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.newApp(port)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context(), args...)
		},
	}
	cmd.Flags().IntVar(&port, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	return cmd
}
