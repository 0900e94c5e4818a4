package importer

import (
	"github.com/finstat-dev/finstat/internal/model"
)

// UniCreditExtractor parses UniCredit Bank CSV exports. The export starts
// with a free-form preamble that ends at the "Account Number" header row.
type UniCreditExtractor struct{}

const (
	unicreditMinFields = 31
	unicreditColValue  = 1
	unicreditColDate   = 4 // "Value Date", already ISO
	unicreditColDesc1  = 13
	unicreditColDesc2  = 14
	unicreditColDesc3  = 15
	unicreditColStatus = 24
	unicreditHeader    = "Account Number"
	unicreditReserved  = "RESERVED"
	unicreditExpected  = `Account Number;Amount;Currency;Booking Date;Value Date;Partner Bank Code;Partner Bank name 1;Partner Bank name 2;Partner account number;Beneficiary;Address 1;Address 2;Address 3;Transaction Details 1;Transaction Details 2;Transaction Details 3;Transaction Details 4;Transaction Details 5;Transaction Details 6;Constant code;Variable code;Specific code;Foreign Exchange Rate;Reference number;Status;Rejection date;Rejection Detail;TPP Registration Number;TPP Name;TPP Payment Reference;Country of Registration;National Authority Code`
)

// Key returns the format key.
func (p *UniCreditExtractor) Key() string { return "csv-unicredit" }

// DisplayName returns the human readable format name.
func (p *UniCreditExtractor) DisplayName() string { return "CSV – UniCredit" }

// Extension returns the file extension the format uses.
func (p *UniCreditExtractor) Extension() string { return "csv" }

// Parse reads a UniCredit CSV export. Reserved (not yet booked) payments are skipped.
func (p *UniCreditExtractor) Parse(raw string) ([]model.Transaction, error) {
	var txns []model.Transaction
	header := true
	err := eachRow(raw, func(line int, row []string) error {
		if len(row) < unicreditMinFields {
			return wrongFormat(p.Key(), line, unicreditExpected)
		}
		if header {
			if row[0] == unicreditHeader {
				header = false
			}
			return nil
		}
		if row[unicreditColStatus] == unicreditReserved {
			return nil
		}
		value, err := parseValue(p.Key(), line, row[unicreditColValue])
		if err != nil {
			return err
		}
		desc := firstNonEmpty(row, unicreditColDesc1, unicreditColDesc2, unicreditColDesc3)
		txns = append(txns, model.New(row[unicreditColDate], desc, value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}
