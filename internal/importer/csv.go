package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/csvreader"
	"github.com/finstat-dev/finstat/internal/model"
)

// bankSeparator is the field separator of every supported bank CSV.
const bankSeparator = ';'

// eachRow calls fn for every non-empty row of a ';'-separated document.
// line is the 1-based row number as read by the tokenizer.
func eachRow(raw string, fn func(line int, row []string) error) error {
	r := csvreader.NewReader(raw, bankSeparator)
	line := 0
	for {
		row, ok := r.ReadLine()
		if !ok {
			return nil
		}
		line++
		if isEmptyRow(row) {
			continue
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func isEmptyRow(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "")
}

// isoFromDotted converts "DD.MM.YYYY" to "YYYY-MM-DD" by position.
func isoFromDotted(format string, line int, s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return "", &MalformedInputError{Format: format, Line: line, Reason: fmt.Sprintf("unexpected date %q", s)}
	}
	return s[6:10] + "-" + s[3:5] + "-" + s[0:2], nil
}

func parseValue(format string, line int, s string) (decimal.Decimal, error) {
	v, err := model.ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, &MalformedInputError{Format: format, Line: line, Reason: "invalid amount", Err: err}
	}
	return v, nil
}

// firstNonEmpty returns the first non-empty cell among cols.
func firstNonEmpty(row []string, cols ...int) string {
	for _, c := range cols {
		if c < len(row) && row[c] != "" {
			return row[c]
		}
	}
	return ""
}

func wrongFormat(format string, line int, expected string) *MalformedInputError {
	reason := "wrong format"
	if expected != "" {
		reason += " - expected: " + expected
	}
	return &MalformedInputError{Format: format, Line: line, Reason: reason}
}
