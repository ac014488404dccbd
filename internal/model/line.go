package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is a single row in analytic-lines.csv: one analytic share of a
// financial move line.
type LedgerLine struct {
	ID          string
	Date        time.Time
	AccountID   int
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Currency    string          // currency of the originating entry
	MoveLine    string
	Description string
}

// Fact is a grouped sum of ledger lines for one (account, currency) pair.
type Fact struct {
	AccountID int
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Currency  string
}

// Net returns debit minus credit.
func (f Fact) Net() decimal.Decimal {
	return f.Debit.Sub(f.Credit)
}

// Selection is an ordered set of chosen accounts, at most one per root.
type Selection struct {
	ID         int
	AccountIDs []int
}

// Currency describes a currency and its rate against the base currency.
type Currency struct {
	Code   string          `yaml:"code"`
	Name   string          `yaml:"name,omitempty"`
	Digits int32           `yaml:"digits"`
	Rate   decimal.Decimal `yaml:"rate"`
}
