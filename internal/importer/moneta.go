package importer

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// MonetaExtractor parses MONETA Money Bank CSV exports.
type MonetaExtractor struct{}

const (
	monetaMinFields = 18
	monetaColDate   = 6  // "Odesláno"
	monetaColValue  = 7  // "Částka"
	monetaColMsg    = 12 // "Zpráva pro příjemce"
	monetaColNote   = 13 // "Poznámka pro mě"
	monetaColDesc   = 17 // "Popis platby"
	monetaHeader    = "Číslo účtu"
	monetaExpected  = `"Číslo účtu";"IBAN";"Číslo protiúčtu";"Banka protiúčtu";"Název účtu příjemce";"Splatnost";"Odesláno";"Částka";"Měna";"Variabilní Symbol";"Specifický Symbol";"Konstantní Symbol";"Zpráva pro příjemce";"Poznámka pro mě";"Název kategorie";"Typ transakce";"Název trvalého příkazu";"Popis platby";"Popis platby 2";"Bankovní reference"`
)

// Key returns the format key.
func (p *MonetaExtractor) Key() string { return "csv-moneta" }

// DisplayName returns the human readable format name.
func (p *MonetaExtractor) DisplayName() string { return "CSV – Moneta" }

// Extension returns the file extension the format uses.
func (p *MonetaExtractor) Extension() string { return "csv" }

// Parse reads a Moneta CSV export.
func (p *MonetaExtractor) Parse(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	firstLine := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) < monetaMinFields {
			return wrongFormat(p.Key(), line, monetaExpected)
		}
		if firstLine {
			firstLine = false
			if strings.TrimSpace(row[0]) == monetaHeader {
				return nil
			}
		}
		date, err := isoFromDotted(p.Key(), line, row[monetaColDate])
		if err != nil {
			return err
		}
		value, err := parseValue(p.Key(), line, row[monetaColValue])
		if err != nil {
			return err
		}
		desc := firstNonEmpty(row, monetaColNote, monetaColMsg, monetaColDesc)
		txns = append(txns, model.New(date, desc, value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}
