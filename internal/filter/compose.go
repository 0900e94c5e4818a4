package filter

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// SearchFilter builds a filter from free search text. Text that looks like
// a JSON object and compiles is used as a query; anything else is matched as
// a case-insensitive substring of the description.
func SearchFilter(text string) *Filter {
	text = strings.TrimSpace(text)
	f := &Filter{
		Name: `"` + text + `"`,
		Kind: KindCompiled,
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if q, err := decodeQuery([]byte(text)); err == nil {
			if p, err := Compile(q); err == nil {
				f.Query = []byte(text)
				f.Predicate = p
				return f
			}
		}
	}

	f.Predicate = fieldPredicate(fieldDescription, containsMatcher(text))
	return f
}

// YearFilter matches transactions whose date contains year.
func YearFilter(year string) *Filter {
	return &Filter{
		Name: year,
		Kind: KindCompiled,
		Predicate: func(t model.Transaction) bool {
			return strings.Contains(t.Date, year)
		},
	}
}

// Concat returns a filter matching what both a and b match. A nil filter or
// a filter without a predicate matches everything here. Neither input is
// modified.
func Concat(a, b *Filter) *Filter {
	pa, pb := predicateOf(a), predicateOf(b)

	var names []string
	for _, f := range []*Filter{a, b} {
		if f != nil {
			names = append(names, f.Name)
		}
	}

	return &Filter{
		Name: strings.Join(names, " & "),
		Kind: KindCompiled,
		Predicate: func(t model.Transaction) bool {
			return (pa == nil || pa(t)) && (pb == nil || pb(t))
		},
	}
}

func predicateOf(f *Filter) Predicate {
	if f == nil {
		return nil
	}
	return f.Predicate
}
