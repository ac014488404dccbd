// Package aggregate computes balance, credit and debit figures for analytic
// accounts from grouped ledger facts.
//
// Computation runs in two pure stages. Reduce folds (account, currency)
// facts into one subtotal per account in that account's own currency.
// RollUp sums a subtree of those subtotals into the currency of the subtree's
// root. Every conversion is rounded immediately at the target precision.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"
)

// CurrencyService converts and rounds amounts between currencies.
type CurrencyService interface {
	Convert(amount decimal.Decimal, from, to string, round bool) (decimal.Decimal, error)
	Round(code string, amount decimal.Decimal) (decimal.Decimal, error)
}

// LedgerLineSource returns ledger facts grouped by (account, currency).
type LedgerLineSource interface {
	Fetch(ctx context.Context, ids []int, q ledger.Query) ([]model.Fact, error)
}

// AccountRepository resolves account metadata and root-scoped subtrees.
type AccountRepository interface {
	// DescendantsOf returns ids plus every transitive child.
	DescendantsOf(ctx context.Context, ids []int) ([]int, error)
	Accounts(ctx context.Context, ids []int) (map[int]model.Account, error)
}

// Engine computes aggregates. It holds no mutable state and may be shared
// between goroutines when its collaborators allow concurrent reads.
type Engine struct {
	accounts   AccountRepository
	lines      LedgerLineSource
	currencies CurrencyService
	logger     *slog.Logger
}

// New creates an Engine. A nil logger discards output.
func New(accounts AccountRepository, lines LedgerLineSource, currencies CurrencyService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		accounts:   accounts,
		lines:      lines,
		currencies: currencies,
		logger:     logger,
	}
}

// ComputeBalances returns the display-signed, rolled-up balance of every
// requested account in its own currency.
func (e *Engine) ComputeBalances(ctx context.Context, ids []int, q ledger.Query) (map[int]decimal.Decimal, error) {
	result := make(map[int]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	all, err := e.accounts.DescendantsOf(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("expanding accounts: %w", err)
	}
	accounts, err := e.accounts.Accounts(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if err := checkCurrencies(all, accounts); err != nil {
		return nil, err
	}

	facts, err := e.lines.Fetch(ctx, postable(all, accounts), q)
	if err != nil {
		return nil, fmt.Errorf("fetching ledger facts: %w", err)
	}
	own, err := Reduce(facts, accounts, e.currencies, Net)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, done := result[id]; done {
			continue
		}
		members, err := e.accounts.DescendantsOf(ctx, []int{id})
		if err != nil {
			return nil, fmt.Errorf("expanding account %d: %w", id, err)
		}
		rolled, err := RollUp(id, members, accounts, own, e.currencies)
		if err != nil {
			return nil, err
		}
		if accounts[id].DisplayBalance == model.CreditMinusDebit {
			rolled = rolled.Neg()
		}
		result[id] = rolled
	}

	e.logger.DebugContext(ctx, "computed balances",
		"requested", len(ids),
		"expanded", len(all),
		"facts", len(facts))
	return result, nil
}

// ComputeCreditDebit sums one ledger column for each requested account from
// its own facts only. Descendants are not rolled up.
func (e *Engine) ComputeCreditDebit(ctx context.Context, ids []int, q ledger.Query, kind Kind) (map[int]decimal.Decimal, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("aggregate kind %s: %w", kind, errs.ErrInvalidArgument)
	}

	result := make(map[int]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	accounts, err := e.accounts.Accounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if err := checkCurrencies(ids, accounts); err != nil {
		return nil, err
	}

	facts, err := e.lines.Fetch(ctx, postable(ids, accounts), q)
	if err != nil {
		return nil, fmt.Errorf("fetching ledger facts: %w", err)
	}
	sums, err := Reduce(facts, accounts, e.currencies, kind.field())
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = sums.Get(id)
	}

	e.logger.DebugContext(ctx, "computed totals",
		"kind", kind.String(),
		"requested", len(ids),
		"facts", len(facts))
	return result, nil
}

// postable keeps the ids whose own ledger facts may be aggregated.
func postable(ids []int, accounts map[int]model.Account) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		a := accounts[id]
		if a.Type == model.AccountTypeView || !a.Active {
			continue
		}
		out = append(out, id)
	}
	return out
}

func checkCurrencies(ids []int, accounts map[int]model.Account) error {
	for _, id := range ids {
		a, ok := accounts[id]
		if !ok {
			return fmt.Errorf("account %d not loaded: %w", id, errs.ErrConfiguration)
		}
		if a.Currency == "" {
			return fmt.Errorf("account %d has no currency: %w", id, errs.ErrConfiguration)
		}
	}
	return nil
}
