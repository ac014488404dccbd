package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// Subtotals maps an account id to an amount in that account's currency.
type Subtotals struct {
	amounts map[int]decimal.Decimal
}

// Get returns the subtotal of id, zero when the account had no facts.
func (s Subtotals) Get(id int) decimal.Decimal {
	if v, ok := s.amounts[id]; ok {
		return v
	}
	return decimal.Zero
}

// Len returns the number of accounts that received at least one fact.
func (s Subtotals) Len() int {
	return len(s.amounts)
}

// Reduce folds grouped facts into one subtotal per account. Each group's
// amount is converted (or, in the same currency, rounded) into the account's
// currency before it is added.
func Reduce(facts []model.Fact, accounts map[int]model.Account, cur CurrencyService, field Field) (Subtotals, error) {
	amounts := make(map[int]decimal.Decimal)
	for _, f := range facts {
		a, ok := accounts[f.AccountID]
		if !ok {
			return Subtotals{}, fmt.Errorf("fact for unknown account %d: %w", f.AccountID, errs.ErrConfiguration)
		}
		if a.Currency == "" {
			return Subtotals{}, fmt.Errorf("account %d has no currency: %w", a.ID, errs.ErrConfiguration)
		}

		amount := field(f)
		var (
			folded decimal.Decimal
			err    error
		)
		switch {
		case f.Currency == "" && amount.IsZero():
			folded = decimal.Zero
		case f.Currency == "":
			return Subtotals{}, fmt.Errorf("facts of account %d have no currency: %w", a.ID, errs.ErrConfiguration)
		case f.Currency != a.Currency:
			folded, err = cur.Convert(amount, f.Currency, a.Currency, true)
		default:
			folded, err = cur.Round(a.Currency, amount)
		}
		if err != nil {
			return Subtotals{}, fmt.Errorf("folding %s facts into account %d: %w", f.Currency, a.ID, err)
		}
		amounts[a.ID] = amounts[a.ID].Add(folded)
	}
	return Subtotals{amounts: amounts}, nil
}

// RollUp sums the subtotals of members into the currency of account id.
// Every member subtotal is converted and rounded on its own, then the sum is
// rounded once more. The display sign is not applied.
func RollUp(id int, members []int, accounts map[int]model.Account, own Subtotals, cur CurrencyService) (decimal.Decimal, error) {
	target, ok := accounts[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("account %d not loaded: %w", id, errs.ErrConfiguration)
	}

	total := decimal.Zero
	for _, m := range members {
		member, ok := accounts[m]
		if !ok {
			return decimal.Zero, fmt.Errorf("account %d not loaded: %w", m, errs.ErrConfiguration)
		}
		converted, err := cur.Convert(own.Get(m), member.Currency, target.Currency, true)
		if err != nil {
			return decimal.Zero, fmt.Errorf("rolling account %d into %d: %w", m, id, err)
		}
		total = total.Add(converted)
	}

	rounded, err := cur.Round(target.Currency, total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rounding account %d: %w", id, err)
	}
	return rounded, nil
}
