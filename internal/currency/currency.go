package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// UnknownCurrencyError is returned for a code that is not in the table.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// Is matches errs.ErrConfiguration.
func (e *UnknownCurrencyError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

// MissingRateError is returned when a conversion needs a rate that is absent or zero.
type MissingRateError struct {
	Code string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no rate for currency %q", e.Code)
}

// Is matches errs.ErrConfiguration.
func (e *MissingRateError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

// Table converts and rounds amounts using fixed rates against a base currency.
// It is read-only after construction.
type Table struct {
	byCode map[string]model.Currency
}

// NewTable indexes currencies by upper-cased code.
func NewTable(currencies []model.Currency) (*Table, error) {
	byCode := make(map[string]model.Currency, len(currencies))
	for _, c := range currencies {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			return nil, fmt.Errorf("currency with empty code: %w", errs.ErrConfiguration)
		}
		if c.Digits < 0 {
			return nil, fmt.Errorf("currency %s: negative digits %d: %w", code, c.Digits, errs.ErrConfiguration)
		}
		if _, dup := byCode[code]; dup {
			return nil, fmt.Errorf("duplicate currency %s: %w", code, errs.ErrConfiguration)
		}
		c.Code = code
		byCode[code] = c
	}
	return &Table{byCode: byCode}, nil
}

// Get returns the currency for a code.
func (t *Table) Get(code string) (model.Currency, bool) {
	c, ok := t.byCode[strings.ToUpper(code)]
	return c, ok
}

// Digits returns the precision of a currency.
func (t *Table) Digits(code string) (int32, error) {
	c, ok := t.Get(code)
	if !ok {
		return 0, &UnknownCurrencyError{Code: code}
	}
	return c.Digits, nil
}

// Round rounds amount half-to-even at the currency's precision.
func (t *Table) Round(code string, amount decimal.Decimal) (decimal.Decimal, error) {
	digits, err := t.Digits(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.RoundBank(digits), nil
}

// Convert computes amount in currency to from currency from, as
// amount * rate(to) / rate(from). Same-currency conversion only rounds.
func (t *Table) Convert(amount decimal.Decimal, from, to string, round bool) (decimal.Decimal, error) {
	src, ok := t.Get(from)
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Code: from}
	}
	dst, ok := t.Get(to)
	if !ok {
		return decimal.Zero, &UnknownCurrencyError{Code: to}
	}

	result := amount
	if src.Code != dst.Code {
		if src.Rate.IsZero() {
			return decimal.Zero, &MissingRateError{Code: src.Code}
		}
		if dst.Rate.IsZero() {
			return decimal.Zero, &MissingRateError{Code: dst.Code}
		}
		result = amount.Mul(dst.Rate).Div(src.Rate)
	}
	if round {
		result = result.RoundBank(dst.Digits)
	}
	return result, nil
}
