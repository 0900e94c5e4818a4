package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/grouping"
)

func newReportCommand(root *rootOptions) *cobra.Command {
	sel := &selectOptions{}
	var groupBy string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sum transactions per time period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, root)
			if err != nil {
				return err
			}
			set, err := p.filters()
			if err != nil {
				return err
			}
			txns, err := p.transactions(cmd)
			if err != nil {
				return err
			}
			f, err := sel.combined(set)
			if err != nil {
				return err
			}

			name := groupBy
			if name == "" {
				name = p.cfg.Grouping
			}
			strategy, err := grouping.Parse(name)
			if err != nil {
				return err
			}

			selected := f.Apply(txns)
			out := cmd.OutOrStdout()
			if strategy == nil {
				printTransactions(out, selected)
				return nil
			}
			printGroups(out, grouping.CreateGroups(strategy, selected))
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&sel.filter, "filter", "", "only transactions matching this filter")
	cmd.Flags().StringVar(&groupBy, "grouping", "", "none, week, month, year or all (default from config)")

	return cmd
}

func printGroups(w io.Writer, groups map[string]*grouping.Group) {
	fmt.Fprintf(w, "%-10s %6s %14s %14s %14s\n", "period", "count", "income", "expenses", "total")
	for _, key := range grouping.SortedKeys(groups) {
		g := groups[key]
		fmt.Fprintf(w, "%-10s %6d %14s %14s %14s\n",
			key, len(g.Transactions), g.Income().StringFixed(2), g.Expenses().StringFixed(2), g.Total().StringFixed(2))
	}
}
