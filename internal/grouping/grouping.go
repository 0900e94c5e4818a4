// Package grouping buckets transactions by time period and fills the gaps
// between observed periods with empty buckets.
package grouping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

// MaxSynthesized bounds the number of empty buckets synthesized between two
// neighbouring keys.
const MaxSynthesized = 10000

// Strategy assigns transactions to bucket keys. Follows returns the key of
// the chronologically next bucket, or "" when the key has no successor.
type Strategy interface {
	Key(t model.Transaction) string
	Follows(key string) string
}

// Group is one bucket of transactions.
type Group struct {
	Key          string
	Transactions []model.Transaction
}

// Total returns the sum of all values in the group.
func (g *Group) Total() decimal.Decimal {
	return model.Sum(g.Transactions)
}

// Income returns the sum of the positive values in the group.
func (g *Group) Income() decimal.Decimal {
	total := decimal.Zero
	for _, t := range g.Transactions {
		if t.Value.IsPositive() {
			total = total.Add(t.Value)
		}
	}
	return total
}

// Expenses returns the sum of the negative values in the group.
func (g *Group) Expenses() decimal.Decimal {
	total := decimal.Zero
	for _, t := range g.Transactions {
		if t.Value.IsNegative() {
			total = total.Add(t.Value)
		}
	}
	return total
}

// Names of the built-in strategies, as accepted by Parse.
const (
	NameNone  = "none"
	NameWeek  = "week"
	NameMonth = "month"
	NameYear  = "year"
	NameAll   = "all"
)

// Names lists the accepted strategy names.
var Names = []string{NameNone, NameWeek, NameMonth, NameYear, NameAll}

// Parse returns the strategy called name. "none" (and "") is the nil
// strategy: no bucketing at all.
func Parse(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameNone:
		return nil, nil
	case NameWeek:
		return Week{}, nil
	case NameMonth:
		return Month{}, nil
	case NameYear:
		return Year{}, nil
	case NameAll:
		return All{}, nil
	}
	return nil, fmt.Errorf("unknown grouping %q (expected one of: %s)", name, strings.Join(Names, ", "))
}

// CreateGroups buckets txns by s. With more than two buckets, the gaps
// between sorted neighbours are filled with empty buckets by following the
// successor chain. Filling a gap stops when the next observed key is reached,
// when the successor already exists (e.g. an irregular 53rd ISO week), when
// there is no successor, or after MaxSynthesized steps. A nil strategy
// returns nil.
func CreateGroups(s Strategy, txns []model.Transaction) map[string]*Group {
	if s == nil {
		return nil
	}

	groups := make(map[string]*Group)
	for _, t := range txns {
		key := s.Key(t)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key}
			groups[key] = g
		}
		g.Transactions = append(g.Transactions, t)
	}

	if len(groups) > 2 {
		fillGaps(s, groups)
	}
	return groups
}

func fillGaps(s Strategy, groups map[string]*Group) {
	keys := SortedKeys(groups)
	for i := 0; i < len(keys)-1; i++ {
		current, next := keys[i], keys[i+1]
		for j := 0; j < MaxSynthesized; j++ {
			expected := s.Follows(current)
			if expected == next || expected == "" {
				break
			}
			if _, exists := groups[expected]; exists {
				break
			}
			groups[expected] = &Group{Key: expected}
			current = expected
		}
	}
}

// SortedKeys returns the keys of groups in ascending order.
func SortedKeys(groups map[string]*Group) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
