package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSplitDelimiter separates the parts of a multi-entry description:
//
//	"Supermarket || -30 ; food || -20 ; drugstore"
const DefaultSplitDelimiter = "||"

// ChecksumMismatchError reports a split whose parts do not sum to the parent value.
type ChecksumMismatchError struct {
	Description string
	Expected    decimal.Decimal
	Actual      decimal.Decimal
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch [%s]: parts sum to %s, expected %s",
		e.Description, e.Actual.String(), e.Expected.String())
}

// MalformedSplitError reports a multi-entry description that cannot be split.
type MalformedSplitError struct {
	Description string
	Part        string
	Reason      string
}

func (e *MalformedSplitError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("malformed split [%s]: %s", e.Description, e.Reason)
	}
	return fmt.Sprintf("malformed split [%s]: part %q: %s", e.Description, e.Part, e.Reason)
}

// Splitter expands multi-entry transactions into sub-transactions.
// Each split family gets its own sequence number, so two identical-looking
// splits stay distinguishable.
type Splitter struct {
	delimiter string
	seq       int
}

// NewSplitter creates a Splitter. An empty delimiter selects DefaultSplitDelimiter.
func NewSplitter(delimiter string) *Splitter {
	if delimiter == "" {
		delimiter = DefaultSplitDelimiter
	}
	return &Splitter{delimiter: delimiter}
}

// Delimiter returns the multi-entry delimiter.
func (s *Splitter) Delimiter() string {
	return s.delimiter
}

// Apply splits every multi-entry transaction in txns. Transactions without the
// delimiter are passed through. The first failing split aborts the whole list.
func (s *Splitter) Apply(txns []Transaction) ([]Transaction, error) {
	out := make([]Transaction, 0, len(txns))
	for i, t := range txns {
		parts, err := s.Split(t)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		out = append(out, parts...)
	}
	return out, nil
}

// Split returns the sub-transactions of t, or t itself when its description
// does not contain the delimiter.
func (s *Splitter) Split(t Transaction) ([]Transaction, error) {
	if !strings.Contains(t.Description, s.delimiter) {
		return []Transaction{t}, nil
	}

	rawParts := strings.Split(t.Description, s.delimiter)
	general := ""
	type entry struct {
		value decimal.Decimal
		text  string
	}
	var entries []entry

	for i, raw := range rawParts {
		part := strings.TrimSpace(raw)
		value, text, ok := parseSplitEntry(part)
		if ok {
			entries = append(entries, entry{value: value, text: text})
			continue
		}
		// Only the leading part may be free text.
		if i == 0 {
			general = part
			continue
		}
		reason := "expected \"amount ; text\""
		if part == "" {
			reason = "empty part"
		}
		return nil, &MalformedSplitError{Description: t.Description, Part: part, Reason: reason}
	}

	if len(entries) == 0 {
		return nil, &MalformedSplitError{Description: t.Description, Reason: "no \"amount ; text\" parts"}
	}

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.value)
	}
	if !sum.Equal(t.Value) {
		return nil, &ChecksumMismatchError{Description: t.Description, Expected: t.Value, Actual: sum}
	}

	s.seq++
	parent := t
	subs := make([]Transaction, len(entries))
	for i, e := range entries {
		desc := e.text
		if general != "" {
			desc = general + " - " + e.text
		}
		subs[i] = Transaction{
			Date:        t.Date,
			Description: desc,
			Value:       e.value,
			Dataset:     t.Dataset,
			Origin:      &parent,
			MultiSeq:    s.seq,
		}
	}
	return subs, nil
}

// parseSplitEntry parses "amount ; text".
func parseSplitEntry(part string) (decimal.Decimal, string, bool) {
	amountStr, text, found := strings.Cut(part, ";")
	if !found {
		return decimal.Decimal{}, "", false
	}
	value, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Decimal{}, "", false
	}
	return value, strings.TrimSpace(text), true
}
