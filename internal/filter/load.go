package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// NoFilterName is the name of the hidden entry of the default filter set.
const NoFilterName = "<no filter>"

// Definition is one entry of a filter definition document.
type Definition struct {
	Name        string          `json:"name"`
	Query       json.RawMessage `json:"query,omitempty"`
	Color       string          `json:"color,omitempty"`
	NegFilter   string          `json:"negFilter,omitempty"`
	HideInTable bool            `json:"hideInTable,omitempty"`
}

// DefaultDefinitions returns the definitions used when the user has none.
func DefaultDefinitions() []Definition {
	return []Definition{{Name: NoFilterName, HideInTable: true}}
}

// Default returns the default filter set.
func Default() *Set {
	s, err := Load(DefaultDefinitions())
	if err != nil {
		panic("loading default filters: " + err.Error())
	}
	return s
}

// LoadJSON parses a filter definition document (a JSON array) and loads it.
func LoadJSON(raw []byte) (*Set, error) {
	var defs []Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parsing filter definitions: %w", err)
	}
	return Load(defs)
}

// Load compiles defs into an ordered filter set. Queries are compiled, colors
// normalized and negations resolved. Every "/" prefix of a name that is not
// declared itself gets a synthetic parent filter, placed before the first
// filter that introduces it. A later definition replaces an earlier one of
// the same name in place.
func Load(defs []Definition) (*Set, error) {
	declared := newSet()
	for i, d := range defs {
		f, err := fromDefinition(d)
		if err != nil {
			if d.Name == "" {
				return nil, fmt.Errorf("filter #%d: %w", i+1, err)
			}
			return nil, fmt.Errorf("filter %q: %w", d.Name, err)
		}
		declared.put(f)
	}

	if err := resolveNegations(declared); err != nil {
		return nil, err
	}

	out := newSet()
	for _, f := range declared.filters {
		for _, parent := range parentNames(f.Name) {
			if !declared.has(parent) && !out.has(parent) {
				out.put(synthesize(parent, declared))
			}
		}
		out.put(f)
	}
	return out, nil
}

func fromDefinition(d Definition) (*Filter, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}

	f := &Filter{
		Name:        d.Name,
		HideInTable: d.HideInTable,
	}

	color, err := normalizeColor(d.Name, d.Color)
	if err != nil {
		return nil, err
	}
	f.Color = color

	hasQuery := len(bytes.TrimSpace(d.Query)) > 0 && string(bytes.TrimSpace(d.Query)) != "null"
	switch {
	case hasQuery && d.NegFilter != "":
		return nil, fmt.Errorf("query and negFilter are mutually exclusive")
	case hasQuery:
		p, err := CompileJSON(d.Query)
		if err != nil {
			return nil, err
		}
		f.Kind = KindCompiled
		f.Query = d.Query
		f.Predicate = p
	case d.NegFilter != "":
		f.Kind = KindNegated
		f.NegFilter = d.NegFilter
	}
	return f, nil
}

// resolveNegations sets the predicate of every negated filter. Chains resolve
// regardless of declaration order; cycles are rejected.
func resolveNegations(s *Set) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(s.filters))

	var resolve func(f *Filter) error
	resolve = func(f *Filter) error {
		if f.Kind != KindNegated || state[f.Name] == done {
			return nil
		}
		if state[f.Name] == visiting {
			return &MissingReferenceError{Filter: f.Name, Reference: f.NegFilter, Reason: "negation cycle"}
		}
		state[f.Name] = visiting

		target, ok := s.Get(f.NegFilter)
		if !ok {
			return &MissingReferenceError{Filter: f.Name, Reference: f.NegFilter, Reason: "filter not found"}
		}
		if err := resolve(target); err != nil {
			return err
		}
		if target.Predicate == nil {
			return &MissingReferenceError{Filter: f.Name, Reference: f.NegFilter, Reason: "filter has no query"}
		}

		p := target.Predicate
		f.Predicate = func(t model.Transaction) bool { return !p(t) }
		state[f.Name] = done
		return nil
	}

	for _, f := range s.filters {
		if err := resolve(f); err != nil {
			return err
		}
	}
	return nil
}

// parentNames returns the "/" prefixes of name, shortest first. A leading
// separator does not start a prefix.
func parentNames(name string) []string {
	var parents []string
	for i := 1; i < len(name); i++ {
		if strings.HasPrefix(name[i:], HierarchySeparator) {
			parents = append(parents, name[:i])
		}
	}
	return parents
}

func synthesize(name string, declared *Set) *Filter {
	prefix := name + HierarchySeparator
	var subs []*Filter
	for _, f := range declared.filters {
		if strings.HasPrefix(f.Name, prefix) {
			subs = append(subs, f)
		}
	}
	return &Filter{
		Name:       name,
		Kind:       KindSynthetic,
		SubFilters: subs,
		Predicate: func(t model.Transaction) bool {
			for _, sub := range subs {
				if sub.Matches(t) {
					return true
				}
			}
			return false
		},
	}
}

// Definitions returns the declared filters of s as a definition document.
// Synthetic filters are left out.
func Definitions(s *Set) []Definition {
	var defs []Definition
	for _, f := range s.All() {
		if f.Kind == KindSynthetic {
			continue
		}
		defs = append(defs, Definition{
			Name:        f.Name,
			Query:       f.Query,
			Color:       f.Color,
			NegFilter:   f.NegFilter,
			HideInTable: f.HideInTable,
		})
	}
	return defs
}

// MarshalJSON encodes the declared filters as a definition document.
func (s *Set) MarshalJSON() ([]byte, error) {
	defs := Definitions(s)
	if defs == nil {
		defs = []Definition{}
	}
	return json.Marshal(defs)
}
