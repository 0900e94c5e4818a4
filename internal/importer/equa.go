package importer

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// EquaExtractor parses Equa bank CSV exports.
type EquaExtractor struct{}

const (
	equaMinFields   = 10
	equaColCounter  = 2 // "Číslo účtu protistrany"
	equaColDate     = 4 // "Datum splatnosti"
	equaColValue    = 6 // "Částka"
	equaColType     = 8 // "Typ pohybu"
	equaColDesc     = 9 // "Popis pohybu"
	equaColLocation = 15
	equaHeader      = "Číslo účtu klienta"
	equaExpected    = `"Číslo účtu klienta";"IBAN účtu klienta";"Číslo účtu protistrany";"Název účtu protistrany";"Datum splatnosti";"Datum vystavení";"Částka";"Měna";"Typ pohybu";"Popis pohybu";"Kategorie";"Kód transakce";"Variabilní symbol";"Specifický symbol";"Konstantní symbol";"Místo transakce";"Plátce";"Země transakce";"Název";"Reference platby"`
)

// Key returns the format key.
func (p *EquaExtractor) Key() string { return "csv-equa" }

// DisplayName returns the human readable format name.
func (p *EquaExtractor) DisplayName() string { return "CSV – Equa" }

// Extension returns the file extension the format uses.
func (p *EquaExtractor) Extension() string { return "csv" }

// Parse reads an Equa CSV export.
func (p *EquaExtractor) Parse(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	firstLine := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) < equaMinFields {
			return wrongFormat(p.Key(), line, equaExpected)
		}
		if firstLine {
			firstLine = false
			if strings.TrimSpace(row[0]) == equaHeader {
				return nil
			}
		}
		date, err := isoFromDotted(p.Key(), line, row[equaColDate])
		if err != nil {
			return err
		}
		value, err := parseValue(p.Key(), line, row[equaColValue])
		if err != nil {
			return err
		}
		txns = append(txns, model.New(date, equaDescription(row), value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// equaDescription falls back to "type - location - counter account" when the
// payment has no description.
func equaDescription(row []string) string {
	if row[equaColDesc] != "" {
		return row[equaColDesc]
	}
	desc := row[equaColType]
	if loc := firstNonEmpty(row, equaColLocation); loc != "" {
		desc += " - " + loc
	}
	if row[equaColCounter] != "" {
		desc += " - " + row[equaColCounter]
	}
	return desc
}
