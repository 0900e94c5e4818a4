package csvreader

import "strings"

// FormatLine joins fields into a single row that ReadLine reads back as the
// same fields. It does not append a line terminator. Line breaks always end a
// row when reading, even inside quotes, so fields must not contain them.
func FormatLine(fields []string, separator rune) string {
	if separator == 0 {
		separator = ','
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteRune(separator)
		}
		if needsQuotes(f, separator) {
			b.WriteString(Quote(f))
		} else {
			b.WriteString(f)
		}
	}
	return b.String()
}

// Quote wraps field in quotes, doubling any embedded quote.
func Quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func needsQuotes(field string, separator rune) bool {
	if field == "" {
		return true
	}
	if strings.TrimSpace(field) != field {
		return true
	}
	return strings.ContainsRune(field, separator) ||
		strings.ContainsAny(field, "\"\r\n\t\ufeff")
}
