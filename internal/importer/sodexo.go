package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// SodexoExtractor parses the JSON returned by the Sodexo benefit account API.
// The document is either an array of entries or an object wrapping the array
// in "Data".
type SodexoExtractor struct{}

type sodexoEntry struct {
	Amount        json.RawMessage `json:"Amount"`
	DateLocalized string          `json:"DateLocalized"`
	TypeLocalized string          `json:"TypeLocalized"`
	WorkshopName  string          `json:"WorkshopName"`
}

type sodexoEnvelope struct {
	Data []sodexoEntry `json:"Data"`
}

// Key returns the format key.
func (p *SodexoExtractor) Key() string { return "json-sodexo" }

// DisplayName returns the human readable format name.
func (p *SodexoExtractor) DisplayName() string { return "JSON – Sodexo API" }

// Extension returns the file extension the format uses.
func (p *SodexoExtractor) Extension() string { return "json" }

// Parse reads a Sodexo JSON document.
func (p *SodexoExtractor) Parse(raw string) ([]model.Transaction, error) {
	entries, err := p.decode([]byte(raw))
	if err != nil {
		return nil, err
	}

	txns := make([]model.Transaction, 0, len(entries))
	for i, e := range entries {
		line := i + 1
		amount, err := sodexoAmount(e.Amount)
		if err != nil {
			return nil, &MalformedInputError{Format: p.Key(), Line: line, Reason: "invalid Amount", Err: err}
		}
		value, err := parseValue(p.Key(), line, amount)
		if err != nil {
			return nil, err
		}
		date, err := isoFromDotted(p.Key(), line, e.DateLocalized)
		if err != nil {
			return nil, err
		}
		desc := "Sodexo: " + e.TypeLocalized
		if e.WorkshopName != "" {
			desc += " - " + e.WorkshopName
		}
		txns = append(txns, model.New(date, desc, value))
	}
	return txns, nil
}

func (p *SodexoExtractor) decode(data []byte) ([]sodexoEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &MalformedInputError{Format: p.Key(), Reason: "empty document"}
	}

	if trimmed[0] == '{' {
		var env sodexoEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &MalformedInputError{Format: p.Key(), Reason: "invalid JSON", Err: err}
		}
		if env.Data == nil {
			return nil, &MalformedInputError{Format: p.Key(), Reason: `expected an array or an object with "Data"`}
		}
		return env.Data, nil
	}

	var entries []sodexoEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, &MalformedInputError{Format: p.Key(), Reason: "invalid JSON", Err: err}
	}
	return entries, nil
}

// sodexoAmount accepts both a JSON number and a numeric string.
func sodexoAmount(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("missing amount")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return strings.TrimSpace(string(raw)), nil
}
