// Package report builds the open chart of analytic accounts: every account in
// tree order with its balance, credit and debit over a period.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/analytic/internal/aggregate"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"
)

// Period bounds a report. A zero Start or End leaves that side open.
type Period struct {
	Start time.Time
	End   time.Time
}

// Query converts the period to a ledger query.
func (p Period) Query() ledger.Query {
	return ledger.Query{Start: p.Start, End: p.End}
}

// String renders the period as "start..end", with open sides left empty.
func (p Period) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return format(p.Start) + ".." + format(p.End)
}

// Engine is the part of the aggregation engine the report needs.
type Engine interface {
	ComputeBalances(ctx context.Context, ids []int, q ledger.Query) (map[int]decimal.Decimal, error)
	ComputeCreditDebit(ctx context.Context, ids []int, q ledger.Query, kind aggregate.Kind) (map[int]decimal.Decimal, error)
}

// Chart is a walkable account forest.
type Chart interface {
	Walk(fn func(a model.Account, depth int))
}

// Row is one account line of the open chart.
type Row struct {
	Account model.Account
	Depth   int
	Balance decimal.Decimal
	Credit  decimal.Decimal
	Debit   decimal.Decimal
}

// Name returns the account's display name.
func (r Row) Name() string {
	return r.Account.RecName()
}

// OpenChart is the computed open chart for one period.
type OpenChart struct {
	Period Period
	Rows   []Row
}

// Build computes balance, credit and debit for every account of chart.
// The three computations run concurrently; the first error cancels the rest.
func Build(ctx context.Context, engine Engine, chart Chart, period Period) (*OpenChart, error) {
	var (
		ids  []int
		rows []Row
	)
	chart.Walk(func(a model.Account, depth int) {
		ids = append(ids, a.ID)
		rows = append(rows, Row{Account: a, Depth: depth})
	})

	q := period.Query()
	var balances, credits, debits map[int]decimal.Decimal

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, err = engine.ComputeBalances(ctx, ids, q)
		if err != nil {
			return fmt.Errorf("balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		credits, err = engine.ComputeCreditDebit(ctx, ids, q, aggregate.Credit)
		if err != nil {
			return fmt.Errorf("credits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		debits, err = engine.ComputeCreditDebit(ctx, ids, q, aggregate.Debit)
		if err != nil {
			return fmt.Errorf("debits: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range rows {
		id := rows[i].Account.ID
		rows[i].Balance = balances[id]
		rows[i].Credit = credits[id]
		rows[i].Debit = debits[id]
	}
	return &OpenChart{Period: period, Rows: rows}, nil
}
