package filter

import (
	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

// FilterGroup holds the transactions classified under one filter.
type FilterGroup struct {
	Filter       *Filter
	Others       bool
	Transactions []model.Transaction
}

// Total returns the sum of the group's transaction values.
func (g *FilterGroup) Total() decimal.Decimal {
	return model.Sum(g.Transactions)
}

// Classification is the ordered result of GroupByFilters.
type Classification struct {
	groups []*FilterGroup
	index  map[string]int
}

// Groups returns every group in filter order, the others group last.
func (c *Classification) Groups() []*FilterGroup {
	out := make([]*FilterGroup, len(c.groups))
	copy(out, c.groups)
	return out
}

// Get returns the group named name.
func (c *Classification) Get(name string) (*FilterGroup, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.groups[i], true
}

func (c *Classification) put(g *FilterGroup) {
	if i, ok := c.index[g.Filter.Name]; ok {
		c.groups[i] = g
		return
	}
	c.index[g.Filter.Name] = len(c.groups)
	c.groups = append(c.groups, g)
}

// GroupByFilters assigns every transaction to the first filter in set that
// matches it, or to the others group named othersLabel. Hidden and synthetic
// filters are never assigned to. Every filter gets a group, even if empty.
// If othersLabel equals a filter name, the others group takes its place.
func GroupByFilters(txns []model.Transaction, set *Set, othersLabel string) *Classification {
	c := &Classification{index: make(map[string]int)}
	for _, f := range set.All() {
		c.put(&FilterGroup{Filter: f})
	}
	c.put(&FilterGroup{Filter: &Filter{Name: othersLabel}, Others: true})

	var targets []*Filter
	for _, f := range set.All() {
		if f.HideInTable || f.Kind == KindSynthetic {
			continue
		}
		targets = append(targets, f)
	}

	for _, t := range txns {
		name := othersLabel
		for _, f := range targets {
			if f.Matches(t) {
				name = f.Name
				break
			}
		}
		g, _ := c.Get(name)
		g.Transactions = append(g.Transactions, t)
	}
	return c
}
