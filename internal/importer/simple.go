package importer

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// SimpleExtractor parses the generic "Date;Value;Description" CSV.
type SimpleExtractor struct{}

const (
	simpleNumFields = 3
	simpleColDate   = 0
	simpleColValue  = 1
	simpleColDesc   = 2
	simpleHeader    = "Date"
	simpleExpected  = `Date;Value;Description OR "Date";"Value";"Description"`
)

// Key returns the format key.
func (p *SimpleExtractor) Key() string { return "csv-simple" }

// DisplayName returns the human readable format name.
func (p *SimpleExtractor) DisplayName() string { return "CSV – simple – Date;Value;Description" }

// Extension returns the file extension the format uses.
func (p *SimpleExtractor) Extension() string { return "csv" }

// Parse reads a simple CSV. The header line is optional.
func (p *SimpleExtractor) Parse(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	firstLine := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) != simpleNumFields {
			return wrongFormat(p.Key(), line, simpleExpected)
		}
		if firstLine {
			firstLine = false
			if strings.TrimSpace(row[simpleColDate]) == simpleHeader {
				return nil
			}
		}
		value, err := parseValue(p.Key(), line, row[simpleColValue])
		if err != nil {
			return err
		}
		txns = append(txns, model.New(row[simpleColDate], row[simpleColDesc], value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}
