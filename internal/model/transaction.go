package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical record every extractor produces.
type Transaction struct {
	Date        string          // "YYYY-MM-DD"
	Description string          // free text, matched by filters
	Value       decimal.Decimal // negative = expense, positive = income
	Dataset     string          // name of the originating import
	Origin      *Transaction    // parent when produced by splitting
	MultiSeq    int             // split family; 0 if not split
}

// New creates a Transaction that is not yet bound to a dataset.
func New(date, description string, value decimal.Decimal) Transaction {
	return Transaction{
		Date:        date,
		Description: description,
		Value:       value,
	}
}

// IsSplit reports whether t was produced by splitting another transaction.
func (t Transaction) IsSplit() bool {
	return t.Origin != nil
}

// Less orders transactions by date, then description.
func Less(a, b Transaction) bool {
	if a.Date == b.Date {
		return a.Description < b.Description
	}
	return a.Date < b.Date
}

// Sort sorts txns in place by date, then description. The sort is stable.
func Sort(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return Less(txns[i], txns[j])
	})
}

// Sum returns the total value of txns.
func Sum(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Value)
	}
	return total
}
