// Package filter compiles filter queries, loads filter definition documents
// and classifies transactions by the loaded filters.
package filter

import (
	"encoding/json"

	"github.com/finstat-dev/finstat/internal/model"
)

// Kind tells which variant a Filter is.
type Kind int

const (
	// KindNone has no predicate, e.g. the default "<no filter>" entry.
	KindNone Kind = iota
	// KindCompiled carries a compiled Query.
	KindCompiled
	// KindNegated negates the filter named by NegFilter.
	KindNegated
	// KindSynthetic is a derived parent that matches if any SubFilters match.
	KindSynthetic
)

func (k Kind) String() string {
	switch k {
	case KindCompiled:
		return "compiled"
	case KindNegated:
		return "negated"
	case KindSynthetic:
		return "synthetic"
	default:
		return "none"
	}
}

// HierarchySeparator separates levels of a hierarchical filter name.
const HierarchySeparator = "/"

// Filter is a named transaction predicate. Only the fields of its Kind are set.
type Filter struct {
	Name        string
	Kind        Kind
	Query       json.RawMessage // KindCompiled
	NegFilter   string          // KindNegated
	SubFilters  []*Filter       // KindSynthetic
	Color       string          // normalized "#rrggbb", or empty
	HideInTable bool
	Predicate   Predicate // nil for KindNone
}

// Matches reports whether t matches f. A filter without a predicate matches
// nothing.
func (f *Filter) Matches(t model.Transaction) bool {
	return f != nil && f.Predicate != nil && f.Predicate(t)
}

// Apply returns the transactions matching f, in order. A nil filter or a
// filter without a predicate keeps every transaction.
func (f *Filter) Apply(txns []model.Transaction) []model.Transaction {
	if f == nil || f.Predicate == nil {
		return txns
	}
	var out []model.Transaction
	for _, t := range txns {
		if f.Predicate(t) {
			out = append(out, t)
		}
	}
	return out
}

// Set is an ordered collection of filters keyed by name. It is never
// modified after Load returns it.
type Set struct {
	filters []*Filter
	index   map[string]int
}

func newSet() *Set {
	return &Set{index: make(map[string]int)}
}

// put appends f, or replaces the filter of the same name in place.
func (s *Set) put(f *Filter) {
	if i, ok := s.index[f.Name]; ok {
		s.filters[i] = f
		return
	}
	s.index[f.Name] = len(s.filters)
	s.filters = append(s.filters, f)
}

func (s *Set) has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Get returns the filter named name.
func (s *Set) Get(name string) (*Filter, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.filters[i], true
}

// All returns the filters in order.
func (s *Set) All() []*Filter {
	if s == nil {
		return nil
	}
	out := make([]*Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// Names returns the filter names in order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.filters))
	for i, f := range s.filters {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of filters.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.filters)
}
