package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/analytic/internal/aggregate"
	"github.com/cleared-dev/analytic/internal/currency"
	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"
	"github.com/cleared-dev/analytic/internal/tree"
)

func acct(id int, typ model.AccountType, root, parent int, cur string) model.Account {
	return model.Account{
		ID: id, Code: "A" + string(rune('0'+id)), Name: "Account", Type: typ,
		RootID: root, ParentID: parent, Currency: cur,
		DisplayBalance: model.DebitMinusCredit, Active: true,
	}
}

func fixtureChart() []model.Account {
	inactive := acct(5, model.AccountTypeNormal, 1, 1, "EUR")
	inactive.Active = false
	return []model.Account{
		acct(1, model.AccountTypeRoot, 0, 0, "USD"),
		acct(2, model.AccountTypeView, 1, 1, "EUR"),
		acct(3, model.AccountTypeNormal, 1, 2, "EUR"),
		acct(4, model.AccountTypeNormal, 1, 3, "JPY"),
		inactive,
		acct(6, model.AccountTypeNormal, 1, 5, "EUR"),
	}
}

func line(id string, date string, account int, debit, credit, cur string) model.LedgerLine {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.LedgerLine{
		ID: id, Date: d, AccountID: account,
		Debit: decimal.RequireFromString(debit), Credit: decimal.RequireFromString(credit),
		Currency: cur,
	}
}

func fixtureLines() []model.LedgerLine {
	return []model.LedgerLine{
		line("l1", "2024-01-10", 1, "10.00", "0", "USD"),
		line("l2", "2024-01-11", 2, "99", "0", "EUR"),
		line("l3", "2024-02-01", 3, "50.125", "0", "EUR"),
		line("l4", "2024-02-02", 3, "0", "20", "USD"),
		line("l5", "2024-02-03", 3, "5", "0", "EUR"),
		line("l6", "2024-03-01", 4, "1000", "0", "JPY"),
		line("l7", "2024-03-02", 5, "7", "0", "EUR"),
		line("l8", "2024-03-03", 6, "3.5", "1.25", "EUR"),
	}
}

func fixtureCurrencies() []model.Currency {
	return []model.Currency{
		{Code: "EUR", Name: "Euro", Digits: 2, Rate: decimal.NewFromInt(1)},
		{Code: "USD", Name: "US Dollar", Digits: 2, Rate: decimal.RequireFromString("1.1")},
		{Code: "JPY", Name: "Yen", Digits: 0, Rate: decimal.NewFromInt(160)},
	}
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "analytic.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.ImportChart(ctx, fixtureChart()))
	require.NoError(t, s.ImportLines(ctx, fixtureLines()))
	require.NoError(t, s.ImportCurrencies(ctx, fixtureCurrencies()))
	return s
}

func factStrings(facts []model.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Currency + " " + f.Debit.String() + " " + f.Credit.String()
	}
	return out
}

func TestChartRoundTrip(t *testing.T) {
	s := openStore(t)

	got, err := s.Chart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureChart(), got)
}

func TestCurrenciesRoundTrip(t *testing.T) {
	s := openStore(t)

	got, err := s.Currencies(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "EUR", got[0].Code)
	assert.Equal(t, "JPY", got[1].Code)
	assert.Equal(t, int32(0), got[1].Digits)
	assert.True(t, got[2].Rate.Equal(decimal.RequireFromString("1.1")))
}

func TestFetchMatchesMemorySource(t *testing.T) {
	s := openStore(t)
	tr, err := tree.Build(fixtureChart())
	require.NoError(t, err)
	mem := ledger.NewMemorySource(fixtureLines(), tr)

	ids := []int{1, 2, 3, 4, 5, 6}
	tests := []struct {
		name string
		q    ledger.Query
	}{
		{"unbounded", ledger.Query{}},
		{"from february", ledger.Query{Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}},
		{"until february", ledger.Query{End: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)}},
		{"single day", ledger.Query{
			Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := mem.Fetch(context.Background(), ids, tt.q)
			require.NoError(t, err)
			got, err := s.Fetch(context.Background(), ids, tt.q)
			require.NoError(t, err)

			require.Len(t, got, len(want))
			for i := range want {
				assert.Equal(t, want[i].AccountID, got[i].AccountID)
			}
			assert.Equal(t, factStrings(want), factStrings(got))
		})
	}
}

func TestFetchSkipsViewAndInactive(t *testing.T) {
	s := openStore(t)

	facts, err := s.Fetch(context.Background(), []int{2, 5}, ledger.Query{})
	require.NoError(t, err)
	assert.Empty(t, facts)

	facts, err = s.Fetch(context.Background(), nil, ledger.Query{})
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestDescendantsOf(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	got, err := s.DescendantsOf(ctx, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, got)

	got, err = s.DescendantsOf(ctx, []int{5, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5, 6}, got)

	_, err = s.DescendantsOf(ctx, []int{99})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestAccounts(t *testing.T) {
	s := openStore(t)

	got, err := s.Accounts(context.Background(), []int{1, 5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].IsRoot())
	assert.False(t, got[5].Active)

	_, err = s.Accounts(context.Background(), []int{1, 42})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestImportReplaces(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.ImportLines(ctx, fixtureLines()[:1]))
	facts, err := s.Fetch(ctx, []int{1, 3}, ledger.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"USD 10 0"}, factStrings(facts))
}

func TestImportLinesRejectsUnstorableAmounts(t *testing.T) {
	tests := []struct {
		name   string
		debit  string
		credit string
	}{
		{"seven decimals", "0.0000001", "0"},
		{"debit above int64 micros", "10000000000000", "0"},
		{"credit above int64 micros", "0", "9223372036854.775808"},
		{"negative below int64 micros", "-10000000000000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t)

			bad := line("x", "2024-01-01", 3, tt.debit, tt.credit, "EUR")
			err := s.ImportLines(context.Background(), []model.LedgerLine{bad})
			assert.ErrorIs(t, err, errs.ErrInvalidArgument)

			// The failed import rolls back and keeps the previous lines.
			facts, err := s.Fetch(context.Background(), []int{3}, ledger.Query{})
			require.NoError(t, err)
			assert.Len(t, facts, 2)
		})
	}
}

func TestImportLinesLargestAmount(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	big := line("big", "2024-01-01", 4, "9223372036854.775807", "0", "JPY")
	require.NoError(t, s.ImportLines(ctx, []model.LedgerLine{big}))

	facts, err := s.Fetch(ctx, []int{4}, ledger.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"JPY 9223372036854.775807 0"}, factStrings(facts))
}

func TestImportSnapshot(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	chart := fixtureChart()[:4]
	chart[0].Currency = "EUR"
	err := s.Import(ctx, Snapshot{
		Currencies: fixtureCurrencies()[:1],
		Accounts:   chart,
		Lines:      fixtureLines()[:1],
	})
	require.NoError(t, err)

	got, err := s.Chart(ctx)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
	curs, err := s.Currencies(ctx)
	require.NoError(t, err)
	require.Len(t, curs, 1)
	assert.Equal(t, "EUR", curs[0].Code)
	facts, err := s.Fetch(ctx, []int{1, 3}, ledger.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"USD 10 0"}, factStrings(facts))
}

func TestImportSnapshotKeepsPreviousOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	factsBefore, err := s.Fetch(ctx, []int{1, 3, 4, 6}, ledger.Query{})
	require.NoError(t, err)

	chart := fixtureChart()
	chart[0].Currency = "EUR"
	lines := append(fixtureLines(), line("bad", "2024-04-01", 3, "0.0000001", "0", "EUR"))
	err = s.Import(ctx, Snapshot{
		Currencies: fixtureCurrencies()[:1],
		Accounts:   chart,
		Lines:      lines,
	})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	got, err := s.Chart(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtureChart(), got, "chart is not replaced")
	curs, err := s.Currencies(ctx)
	require.NoError(t, err)
	assert.Len(t, curs, 3, "currencies are not replaced")
	facts, err := s.Fetch(ctx, []int{1, 3, 4, 6}, ledger.Query{})
	require.NoError(t, err)
	assert.Equal(t, factStrings(factsBefore), factStrings(facts))
}

func TestEngineOverStoreMatchesTree(t *testing.T) {
	s := openStore(t)
	tr, err := tree.Build(fixtureChart())
	require.NoError(t, err)
	table, err := currency.NewTable(fixtureCurrencies())
	require.NoError(t, err)

	ctx := context.Background()
	ids := []int{1, 2, 3, 4, 5, 6}
	memEngine := aggregate.New(tr, ledger.NewMemorySource(fixtureLines(), tr), table, nil)
	sqlEngine := aggregate.New(s, s, table, nil)

	want, err := memEngine.ComputeBalances(ctx, ids, ledger.Query{})
	require.NoError(t, err)
	got, err := sqlEngine.ComputeBalances(ctx, ids, ledger.Query{})
	require.NoError(t, err)

	for _, id := range ids {
		assert.True(t, want[id].Equal(got[id]), "account %d: want %s, got %s", id, want[id], got[id])
	}

	for _, kind := range []aggregate.Kind{aggregate.Credit, aggregate.Debit} {
		want, err := memEngine.ComputeCreditDebit(ctx, ids, ledger.Query{}, kind)
		require.NoError(t, err)
		got, err := sqlEngine.ComputeCreditDebit(ctx, ids, ledger.Query{}, kind)
		require.NoError(t, err)
		for _, id := range ids {
			assert.True(t, want[id].Equal(got[id]), "%s account %d: want %s, got %s", kind, id, want[id], got[id])
		}
	}
}
