// Package csvreader reads delimiter-separated bank exports.
//
// Unlike encoding/csv it never fails: exports mix quoted and unquoted cells,
// leave quotes unterminated and pad cells with whitespace, and all of that is
// read leniently.
package csvreader

import "strings"

const (
	bom   = '\ufeff'
	quote = '"'
)

// Reader returns the rows of an in-memory document one at a time.
type Reader struct {
	input     []rune
	separator rune
	pos       int
}

// NewReader creates a Reader over input. A zero separator selects ','.
func NewReader(input string, separator rune) *Reader {
	if separator == 0 {
		separator = ','
	}
	return &Reader{input: []rune(input), separator: separator}
}

// ReadLine returns the next row. ok is false once the input is exhausted;
// an empty line yields an empty, non-nil row with ok set.
func (r *Reader) ReadLine() (fields []string, ok bool) {
	if r.pos == 0 && len(r.input) > 0 && r.input[0] == bom {
		r.pos++
	}

	fields = []string{}
	var buf strings.Builder
	inString := false
	separatorNeeded := false
	quoted := false

loop:
	for r.pos < len(r.input) {
		c := r.input[r.pos]
		switch {
		case c == quote:
			switch {
			case !inString:
				separatorNeeded = false
				quoted = true
				inString = true
			case !quoted:
				buf.WriteRune(c)
			case r.pos+1 < len(r.input) && r.input[r.pos+1] == quote:
				// "" is an escaped quote
				r.pos++
				buf.WriteRune(c)
			default:
				fields = append(fields, buf.String())
				buf.Reset()
				inString = false
				separatorNeeded = true
			}
			r.pos++

		case c == r.separator:
			switch {
			case inString && !quoted:
				fields = append(fields, strings.TrimSpace(buf.String()))
				buf.Reset()
				inString = false
				separatorNeeded = false
			case inString:
				buf.WriteRune(c)
			default:
				if !separatorNeeded {
					fields = append(fields, "")
				}
				separatorNeeded = false
			}
			r.pos++

		case c == '\n' || c == '\r':
			r.pos++
			break loop

		case c == '\t' || c == ' ':
			if inString {
				buf.WriteRune(c)
			}
			r.pos++

		default:
			if !inString {
				separatorNeeded = false
				quoted = false
				inString = true
			}
			buf.WriteRune(c)
			r.pos++
		}
	}

	if inString {
		if quoted {
			// missing closing quote, keep the content as is
			fields = append(fields, buf.String())
		} else {
			fields = append(fields, strings.TrimSpace(buf.String()))
		}
	}

	if len(fields) == 0 && r.pos >= len(r.input) {
		return nil, false
	}
	return fields, true
}

// ReadAll returns all remaining rows.
func (r *Reader) ReadAll() [][]string {
	var rows [][]string
	for {
		row, ok := r.ReadLine()
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}
