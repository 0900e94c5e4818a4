package importer

import (
	"strings"

	"github.com/finstat-dev/finstat/internal/model"
)

// FioExtractor parses Fio banka CSV exports. Two layouts exist: the internet
// banking / API export (v2) that starts with an account summary block, and the
// older flat export (v1) with ten columns.
type FioExtractor struct{}

const (
	fioV1NumFields = 10
	fioV1ColDate   = 0
	fioV1ColValue  = 1
	fioV1ColDesc   = 8
	fioV1Header    = "Datum"
	fioV1Expected  = `"Datum";"Objem";"Měna";"Protiúčet";"Kód banky";"KS";"VS";"SS";"Poznámka";"Typ"`

	fioV2MinFields = 17
	fioV2ColDate   = 1
	fioV2ColValue  = 2
	fioV2ColDesc   = 16
)

// fioV2Markers open the transaction table of a v2 export.
var fioV2Markers = []string{"ID operace", "ID pohybu"}

// Key returns the format key.
func (p *FioExtractor) Key() string { return "csv-fio" }

// DisplayName returns the human readable format name.
func (p *FioExtractor) DisplayName() string { return "CSV – Fio" }

// Extension returns the file extension the format uses.
func (p *FioExtractor) Extension() string { return "csv" }

// Parse detects the export layout and reads it.
func (p *FioExtractor) Parse(raw string) ([]model.Transaction, error) {
	if isFioV2(raw) {
		return p.parseV2(raw)
	}
	return p.parseV1(raw)
}

func isFioV2(raw string) bool {
	trimmed := strings.TrimLeft(raw, "\ufeff \t\r\n")
	if strings.HasPrefix(trimmed, `"accountId";`) || strings.HasPrefix(trimmed, "accountId;") {
		return true
	}
	found := false
	_ = eachRow(raw, func(_ int, row []string) error {
		if isFioV2Marker(row[0]) {
			found = true
		}
		return nil
	})
	return found
}

func isFioV2Marker(cell string) bool {
	cell = strings.TrimSpace(cell)
	for _, m := range fioV2Markers {
		if cell == m {
			return true
		}
	}
	return false
}

func (p *FioExtractor) parseV1(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	firstLine := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) != fioV1NumFields {
			return wrongFormat(p.Key(), line, fioV1Expected)
		}
		if firstLine {
			firstLine = false
			if strings.TrimSpace(row[fioV1ColDate]) == fioV1Header {
				return nil
			}
		}
		date, err := isoFromDotted(p.Key(), line, row[fioV1ColDate])
		if err != nil {
			return err
		}
		value, err := parseValue(p.Key(), line, row[fioV1ColValue])
		if err != nil {
			return err
		}
		txns = append(txns, model.New(date, row[fioV1ColDesc], value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (p *FioExtractor) parseV2(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	header := true
	err := eachRow(raw, func(line int, row []string) error {
		if header {
			if isFioV2Marker(row[0]) {
				header = false
			}
			return nil
		}
		if len(row) < fioV2MinFields {
			return wrongFormat(p.Key(), line, "")
		}
		date, err := isoFromDotted(p.Key(), line, row[fioV2ColDate])
		if err != nil {
			return err
		}
		value, err := parseValue(p.Key(), line, row[fioV2ColValue])
		if err != nil {
			return err
		}
		txns = append(txns, model.New(date, row[fioV2ColDesc], value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if header {
		return nil, &MalformedInputError{Format: p.Key(), Reason: "transaction table header not found"}
	}
	return txns, nil
}
