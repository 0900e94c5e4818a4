package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/finstat-dev/finstat/internal/filter"
	"github.com/finstat-dev/finstat/internal/model"
)

type selectOptions struct {
	year   string
	search string
	filter string
}

func (o *selectOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.year, "year", "", "only transactions from this year")
	cmd.Flags().StringVar(&o.search, "search", "", "search text or JSON query")
}

// combined builds the filter selecting the transactions to show: the named
// filter, narrowed by year and search.
func (o *selectOptions) combined(set *filter.Set) (*filter.Filter, error) {
	var f *filter.Filter
	if o.filter != "" {
		named, ok := set.Get(o.filter)
		if !ok {
			return nil, fmt.Errorf("unknown filter %q", o.filter)
		}
		f = named
	}
	if o.year != "" {
		f = filter.Concat(filter.YearFilter(o.year), f)
	}
	if o.search != "" {
		f = filter.Concat(f, filter.SearchFilter(o.search))
	}
	return f, nil
}

func newClassifyCommand(root *rootOptions) *cobra.Command {
	sel := &selectOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Sum transactions per filter",
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

			c := filter.GroupByFilters(f.Apply(txns), set, p.cfg.OthersLabel)
			printClassification(cmd.OutOrStdout(), c)
			return nil
		},
	}
	sel.register(cmd)

	return cmd
}

// printClassification prints one line per visible filter. Synthetic parents
// show the sum of their children.
func printClassification(w io.Writer, c *filter.Classification) {
	for _, g := range c.Groups() {
		if g.Filter.HideInTable {
			continue
		}

		count := len(g.Transactions)
		total := g.Total()
		if g.Filter.Kind == filter.KindSynthetic {
			count, total = 0, decimal.Zero
			for _, sub := range g.Filter.SubFilters {
				if sg, ok := c.Get(sub.Name); ok && !sub.HideInTable {
					count += len(sg.Transactions)
					total = total.Add(sg.Total())
				}
			}
		}

		fmt.Fprintf(w, "%s %-30s %6d %14s\n", swatch(g.Filter.Color), g.Filter.Name, count, total.StringFixed(2))
	}
}

// swatch renders a colored square for a filter color; filters without a
// color get a plain one.
func swatch(color string) string {
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render("■")
}

func printTransactions(w io.Writer, txns []model.Transaction) {
	for _, t := range txns {
		fmt.Fprintf(w, "%s %12s  %-20s %s\n", t.Date, t.Value.StringFixed(2), t.Dataset, t.Description)
	}
}
