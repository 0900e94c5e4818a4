package filter

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// QueryCompileError reports a query that cannot be compiled: an unknown
// top-level token, an unsupported operator or an operand of the wrong type.
type QueryCompileError struct {
	Path       string // location inside the query, e.g. "description.$gt"
	Token      string
	Reason     string
	Suggestion string // closest known token, if any
}

func (e *QueryCompileError) Error() string {
	var b strings.Builder
	b.WriteString("query")
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Token != "" {
		fmt.Fprintf(&b, " %q", e.Token)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	return b.String()
}

// MissingReferenceError reports a negFilter that does not resolve to a
// filter with a predicate.
type MissingReferenceError struct {
	Filter    string
	Reference string
	Reason    string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("filter %q: negFilter %q: %s", e.Filter, e.Reference, e.Reason)
}

// InvalidColorError reports a color that is neither a hex value nor a known
// color name.
type InvalidColorError struct {
	Filter string
	Color  string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("filter %q: invalid color %q", e.Filter, e.Color)
}

// suggest returns the candidate closest to token, or "" when nothing is
// close enough to be a plausible typo.
func suggest(token string, candidates []string) string {
	best := ""
	bestDist := len(token)/2 + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(token), c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
