package commands

import (
	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/buildinfo"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	dir      string
	logLevel string
	logJSON  bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "finstat",
		Short:   "Bank export ingest, classification and reporting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides log_level in config)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "write logs as JSON lines")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newFormatsCommand())
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newClassifyCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}
