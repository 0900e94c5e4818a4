package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finstat-dev/finstat/internal/model"
)

// Predicate reports whether a transaction matches a filter.
type Predicate func(t model.Transaction) bool

// Query fields and operators.
const (
	fieldDescription = "description"
	fieldDate        = "date"
	fieldValue       = "value"
	fieldDataset     = "dataset"

	opEq       = "$eq"
	opContains = "$contains"
	opRegex    = "$regex"
	opGt       = "$gt"
	opGte      = "$gte"
	opLt       = "$lt"
	opLte      = "$lte"
	opOr       = "$or"
	opAnd      = "$and"
	opNot      = "$not"
)

var (
	queryFields    = []string{fieldDescription, fieldDate, fieldValue, fieldDataset}
	queryOperators = []string{opEq, opContains, opRegex, opGt, opGte, opLt, opLte, opOr, opAnd, opNot}
	topLevelTokens = append(append([]string{}, queryFields...), opOr, opAnd, opNot)
)

// Compile compiles a decoded query into a predicate. A query is a bare
// string or number matched against the description, or an object of field
// sub-queries and $or/$and/$not combinators. All keys of one object must
// match. Numbers may be given as json.Number, float64, int, int64 or
// decimal.Decimal.
func Compile(query any) (Predicate, error) {
	return compileQuery(query, "")
}

// CompileJSON decodes raw and compiles it. Numbers keep their exact decimal
// representation.
func CompileJSON(raw []byte) (Predicate, error) {
	q, err := decodeQuery(raw)
	if err != nil {
		return nil, err
	}
	return Compile(q)
}

func decodeQuery(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var q any
	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("decoding query: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decoding query: unexpected data after query")
	}
	return q, nil
}

func compileQuery(query any, path string) (Predicate, error) {
	obj, ok := query.(map[string]any)
	if !ok {
		if _, isList := query.([]any); isList || query == nil {
			return nil, &QueryCompileError{Path: path, Reason: "expected a string, a number or an object"}
		}
		m, err := compileField(query, joinPath(path, fieldDescription))
		if err != nil {
			return nil, err
		}
		return fieldPredicate(fieldDescription, m), nil
	}

	var preds []Predicate
	for _, key := range sortedKeys(obj) {
		value := obj[key]
		keyPath := joinPath(path, key)
		switch key {
		case fieldDescription, fieldDate, fieldValue, fieldDataset:
			m, err := compileField(value, keyPath)
			if err != nil {
				return nil, err
			}
			preds = append(preds, fieldPredicate(key, m))
		case opOr, opAnd:
			items, ok := value.([]any)
			if !ok {
				return nil, &QueryCompileError{Path: keyPath, Reason: "expected a list"}
			}
			subs := make([]Predicate, 0, len(items))
			for i, item := range items {
				p, err := compileQuery(item, fmt.Sprintf("%s[%d]", keyPath, i))
				if err != nil {
					return nil, err
				}
				subs = append(subs, p)
			}
			if key == opOr {
				preds = append(preds, anyOf(subs))
			} else {
				preds = append(preds, allOf(subs))
			}
		case opNot:
			p, err := compileQuery(value, keyPath)
			if err != nil {
				return nil, err
			}
			preds = append(preds, func(t model.Transaction) bool { return !p(t) })
		default:
			return nil, &QueryCompileError{
				Path:       path,
				Token:      key,
				Reason:     "unexpected token",
				Suggestion: suggest(key, topLevelTokens),
			}
		}
	}
	return allOf(preds), nil
}

func anyOf(preds []Predicate) Predicate {
	return func(t model.Transaction) bool {
		for _, p := range preds {
			if p(t) {
				return true
			}
		}
		return false
	}
}

func allOf(preds []Predicate) Predicate {
	return func(t model.Transaction) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// subject is a transaction field prepared for matching. The value field is
// numeric; its text form is the canonical decimal string.
type subject struct {
	text    string
	num     decimal.Decimal
	numeric bool
}

type matcher func(v subject) bool

func fieldPredicate(field string, m matcher) Predicate {
	return func(t model.Transaction) bool {
		return m(fieldOf(t, field))
	}
}

func fieldOf(t model.Transaction, field string) subject {
	switch field {
	case fieldDate:
		return subject{text: t.Date}
	case fieldValue:
		return subject{text: t.Value.String(), num: t.Value, numeric: true}
	case fieldDataset:
		return subject{text: t.Dataset}
	default:
		return subject{text: t.Description}
	}
}

// operand is a literal from the query. Strings that look like numbers keep
// their parsed value so they can be compared with the value field.
type operand struct {
	text   string
	num    decimal.Decimal
	isNum  bool
	hasNum bool
}

func toOperand(v any) (operand, bool) {
	switch x := v.(type) {
	case string:
		op := operand{text: x}
		if d, err := decimal.NewFromString(strings.TrimSpace(x)); err == nil {
			op.num, op.hasNum = d, true
		}
		return op, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return operand{}, false
		}
		return numOperand(d), true
	case float64:
		return numOperand(decimal.NewFromFloat(x)), true
	case int:
		return numOperand(decimal.NewFromInt(int64(x))), true
	case int64:
		return numOperand(decimal.NewFromInt(x)), true
	case decimal.Decimal:
		return numOperand(x), true
	}
	return operand{}, false
}

func numOperand(d decimal.Decimal) operand {
	return operand{text: d.String(), num: d, isNum: true, hasNum: true}
}

func compileField(query any, path string) (matcher, error) {
	if obj, ok := query.(map[string]any); ok {
		var ms []matcher
		for _, key := range sortedKeys(obj) {
			m, err := compileOperator(key, obj[key], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		return allMatch(ms), nil
	}

	op, ok := toOperand(query)
	if !ok {
		return nil, &QueryCompileError{Path: path, Reason: "expected a string, a number or an object of operators"}
	}
	if op.isNum {
		return eqMatcher(op), nil
	}
	return containsMatcher(op.text), nil
}

func compileOperator(operator string, value any, path string) (matcher, error) {
	switch operator {
	case opOr, opAnd:
		items, ok := value.([]any)
		if !ok {
			return nil, &QueryCompileError{Path: path, Reason: "expected a list"}
		}
		ms := make([]matcher, 0, len(items))
		for i, item := range items {
			m, err := compileField(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		if operator == opOr {
			return anyMatch(ms), nil
		}
		return allMatch(ms), nil
	case opNot:
		m, err := compileField(value, path)
		if err != nil {
			return nil, err
		}
		return func(v subject) bool { return !m(v) }, nil
	case opEq, opContains, opRegex, opGt, opGte, opLt, opLte:
		// literal operand below
	default:
		return nil, &QueryCompileError{
			Path:       path,
			Token:      operator,
			Reason:     "unsupported operator",
			Suggestion: suggest(operator, queryOperators),
		}
	}

	op, ok := toOperand(value)
	if !ok {
		return nil, &QueryCompileError{Path: path, Reason: "expected a string or a number"}
	}

	switch operator {
	case opEq:
		return eqMatcher(op), nil
	case opContains:
		if op.isNum {
			return nil, &QueryCompileError{Path: path, Reason: "expected a string"}
		}
		return containsMatcher(op.text), nil
	case opRegex:
		if op.isNum {
			return nil, &QueryCompileError{Path: path, Reason: "expected a string"}
		}
		re, err := regexp.Compile("(?i)" + op.text)
		if err != nil {
			return nil, &QueryCompileError{Path: path, Token: op.text, Reason: "invalid regular expression"}
		}
		return func(v subject) bool { return re.MatchString(v.text) }, nil
	case opGt:
		return cmpMatcher(op, func(c int) bool { return c > 0 }), nil
	case opGte:
		return cmpMatcher(op, func(c int) bool { return c >= 0 }), nil
	case opLt:
		return cmpMatcher(op, func(c int) bool { return c < 0 }), nil
	default:
		return cmpMatcher(op, func(c int) bool { return c <= 0 }), nil
	}
}

// eqMatcher never matches across types: a number equals only the value
// field, a string only the text fields.
func eqMatcher(op operand) matcher {
	if op.isNum {
		return func(v subject) bool { return v.numeric && v.num.Equal(op.num) }
	}
	return func(v subject) bool { return !v.numeric && v.text == op.text }
}

func containsMatcher(needle string) matcher {
	needle = strings.ToLower(needle)
	return func(v subject) bool {
		return strings.Contains(strings.ToLower(v.text), needle)
	}
}

// cmpMatcher compares numerically when either side is a number and
// lexicographically when both are strings. A numeric comparison with a
// non-numeric string is false.
func cmpMatcher(op operand, ok func(c int) bool) matcher {
	return func(v subject) bool {
		switch {
		case v.numeric:
			if !op.hasNum {
				return false
			}
			return ok(v.num.Cmp(op.num))
		case op.isNum:
			d, err := decimal.NewFromString(strings.TrimSpace(v.text))
			if err != nil {
				return false
			}
			return ok(d.Cmp(op.num))
		default:
			return ok(strings.Compare(v.text, op.text))
		}
	}
}

func anyMatch(ms []matcher) matcher {
	return func(v subject) bool {
		for _, m := range ms {
			if m(v) {
				return true
			}
		}
		return false
	}
}

func allMatch(ms []matcher) matcher {
	return func(v subject) bool {
		for _, m := range ms {
			if !m(v) {
				return false
			}
		}
		return true
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
