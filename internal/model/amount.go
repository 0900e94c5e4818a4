package model

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a localized monetary amount such as "-1 234,50",
// "1.234,50", "+12.5" or "1,234.50". Whitespace (including no-break spaces)
// is treated as a thousands separator. When both ',' and '.' occur, the
// rightmost one is the decimal separator; a lone ',' is a decimal comma.
// A trailing currency token such as "CZK" or "Kč" is ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, trimCurrency(s))
	cleaned = strings.TrimPrefix(cleaned, "+")

	comma := strings.LastIndex(cleaned, ",")
	dot := strings.LastIndex(cleaned, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case comma >= 0:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// trimCurrency drops a last whitespace-separated token made only of letters
// and currency symbols.
func trimCurrency(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	last := fields[len(fields)-1]
	for _, r := range last {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Sc, r) {
			return s
		}
	}
	return strings.TrimRightFunc(strings.TrimSuffix(strings.TrimRightFunc(s, unicode.IsSpace), last), unicode.IsSpace)
}
