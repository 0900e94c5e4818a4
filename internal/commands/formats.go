package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/importer"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported import formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, e := range importer.DefaultRegistry().All() {
				fmt.Fprintf(out, "%-16s .%-5s %s\n", e.Key(), e.Extension(), e.DisplayName())
			}
			return nil
		},
	}
}
