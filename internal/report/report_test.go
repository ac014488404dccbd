package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/analytic/internal/aggregate"
	"github.com/cleared-dev/analytic/internal/currency"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"
	"github.com/cleared-dev/analytic/internal/tree"
)

func chartFixture() []model.Account {
	return []model.Account{
		{ID: 1, Code: "R", Name: "Root", Type: model.AccountTypeRoot, Currency: "USD", DisplayBalance: model.DebitMinusCredit, Active: true},
		{ID: 2, Code: "R-X", Name: "X", Type: model.AccountTypeNormal, RootID: 1, ParentID: 1, Currency: "EUR", DisplayBalance: model.DebitMinusCredit, Active: true},
		{ID: 3, Code: "R-Y", Name: "Y", Type: model.AccountTypeNormal, RootID: 1, ParentID: 1, Currency: "USD", DisplayBalance: model.CreditMinusDebit, Active: true},
	}
}

func linesFixture() []model.LedgerLine {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []model.LedgerLine{
		{ID: "1", Date: day(1), AccountID: 2, Debit: decimal.NewFromInt(100), Credit: decimal.Zero, Currency: "EUR"},
		{ID: "2", Date: day(2), AccountID: 3, Debit: decimal.NewFromInt(20), Credit: decimal.NewFromInt(5), Currency: "USD"},
		{ID: "3", Date: day(20), AccountID: 3, Debit: decimal.Zero, Credit: decimal.NewFromInt(40), Currency: "USD"},
	}
}

func setup(t *testing.T) (*aggregate.Engine, *tree.Tree, *currency.Table) {
	t.Helper()
	tr, err := tree.Build(chartFixture())
	require.NoError(t, err)
	table, err := currency.NewTable([]model.Currency{
		{Code: "EUR", Digits: 2, Rate: decimal.NewFromInt(1)},
		{Code: "USD", Digits: 2, Rate: decimal.RequireFromString("1.1")},
	})
	require.NoError(t, err)
	return aggregate.New(tr, ledger.NewMemorySource(linesFixture(), tr), table, nil), tr, table
}

func TestBuild(t *testing.T) {
	engine, tr, _ := setup(t)

	chart, err := Build(context.Background(), engine, tr, Period{})
	require.NoError(t, err)
	require.Len(t, chart.Rows, 3)

	assert.Equal(t, 1, chart.Rows[0].Account.ID)
	assert.Equal(t, 0, chart.Rows[0].Depth)
	assert.Equal(t, 2, chart.Rows[1].Account.ID)
	assert.Equal(t, 1, chart.Rows[1].Depth)
	assert.Equal(t, "R-Y - Y", chart.Rows[2].Name())

	// X: 100 EUR. Y: net -25 USD shown credit minus debit.
	assert.Equal(t, "100", chart.Rows[1].Balance.String())
	assert.Equal(t, "25", chart.Rows[2].Balance.String())
	assert.Equal(t, "45", chart.Rows[2].Credit.String())
	assert.Equal(t, "20", chart.Rows[2].Debit.String())

	// Root: 110 USD from X plus -25 USD from Y.
	assert.Equal(t, "85", chart.Rows[0].Balance.String())
	assert.True(t, chart.Rows[0].Credit.IsZero(), "root has no own lines")
}

func TestBuildPeriod(t *testing.T) {
	engine, tr, _ := setup(t)

	period := Period{End: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
	chart, err := Build(context.Background(), engine, tr, period)
	require.NoError(t, err)

	assert.Equal(t, "-15", chart.Rows[2].Balance.String())
	assert.Equal(t, "5", chart.Rows[2].Credit.String())
	assert.Equal(t, "..2024-01-10", chart.Period.String())
}

type failingEngine struct{}

var errBoom = errors.New("boom")

func (failingEngine) ComputeBalances(context.Context, []int, ledger.Query) (map[int]decimal.Decimal, error) {
	return map[int]decimal.Decimal{}, nil
}

func (failingEngine) ComputeCreditDebit(_ context.Context, _ []int, _ ledger.Query, kind aggregate.Kind) (map[int]decimal.Decimal, error) {
	if kind == aggregate.Debit {
		return nil, errBoom
	}
	return map[int]decimal.Decimal{}, nil
}

func TestBuildPropagatesErrors(t *testing.T) {
	_, tr, _ := setup(t)

	_, err := Build(context.Background(), failingEngine{}, tr, Period{})
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "debits")
}

func TestRender(t *testing.T) {
	engine, tr, table := setup(t)

	chart, err := Build(context.Background(), engine, tr, Period{})
	require.NoError(t, err)

	out, err := chart.Render(table.Digits)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Open chart ..\n"))
	assert.Contains(t, out, "BALANCE")
	assert.Contains(t, out, "R - Root")
	assert.Contains(t, out, "R-X - X")
	assert.Contains(t, out, "85.00")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "45.00")
}

func TestRenderUnknownCurrency(t *testing.T) {
	chart := &OpenChart{Rows: []Row{{Account: model.Account{ID: 1, Name: "A", Currency: "XXX"}}}}

	_, err := chart.Render(func(code string) (int32, error) {
		return 0, errors.New("unknown " + code)
	})
	assert.EqualError(t, err, "unknown XXX")
}
