package importer

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// RaiffeisenExtractor parses Raiffeisenbank CSV exports.
type RaiffeisenExtractor struct{}

const (
	raiffeisenMinFields = 22
	raiffeisenColDate   = 0  // "Datum provedení"
	raiffeisenColType   = 7  // "Typ transakce"
	raiffeisenColNote   = 9  // "Poznámka"
	raiffeisenColValue  = 13 // "Zaúčtovaná částka"
	raiffeisenColOwn    = 19 // "Vlastní poznámka"
	raiffeisenHeader    = "Datum provedení"
	raiffeisenExpected  = `Datum provedení;Datum zaúčtování;Číslo účtu;Název účtu;Kategorie transakce;Číslo protiúčtu;Název protiúčtu;Typ transakce;Zpráva;Poznámka;VS;KS;SS;Zaúčtovaná částka;Měna účtu;Původní částka a měna;Původní částka a měna;Poplatek;Id transakce;Vlastní poznámka;Název obchodníka;Město`
)

// Key returns the format key.
func (p *RaiffeisenExtractor) Key() string { return "csv-raiffeisen" }

// DisplayName returns the human readable format name.
func (p *RaiffeisenExtractor) DisplayName() string { return "CSV – Raiffeisen" }

// Extension returns the file extension the format uses.
func (p *RaiffeisenExtractor) Extension() string { return "csv" }

// Parse reads a Raiffeisenbank CSV export.
func (p *RaiffeisenExtractor) Parse(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	firstLine := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) < raiffeisenMinFields {
			return wrongFormat(p.Key(), line, raiffeisenExpected)
		}
		if firstLine {
			firstLine = false
			if strings.TrimSpace(row[0]) == raiffeisenHeader {
				return nil
			}
		}
		date, err := isoFromDotted(p.Key(), line, row[raiffeisenColDate])
		if err != nil {
			return err
		}
		value, err := parseValue(p.Key(), line, row[raiffeisenColValue])
		if err != nil {
			return err
		}
		desc := firstNonEmpty(row, raiffeisenColOwn, raiffeisenColNote, raiffeisenColType)
		txns = append(txns, model.New(date, desc, value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}
