package ledger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/model"
)

// Query restricts which ledger lines take part in an aggregation.
// A zero Start or End leaves that side unbounded; both bounds are inclusive.
type Query struct {
	Start time.Time
	End   time.Time
}

// Match reports whether a line falls inside the query.
func (q Query) Match(line model.LedgerLine) bool {
	if !q.Start.IsZero() && line.Date.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && line.Date.After(q.End) {
		return false
	}
	return true
}

// AccountFilter decides whether an account's own lines may be aggregated.
type AccountFilter interface {
	Get(id int) (model.Account, bool)
}

// MemorySource serves grouped facts from lines held in memory.
type MemorySource struct {
	lines    []model.LedgerLine
	accounts AccountFilter
}

// NewMemorySource creates a source over lines. Lines booked on view or
// inactive accounts, or on accounts unknown to the filter, are never returned.
func NewMemorySource(lines []model.LedgerLine, accounts AccountFilter) *MemorySource {
	return &MemorySource{lines: lines, accounts: accounts}
}

// Load reads analytic-lines.csv from a repo root.
func Load(repoRoot string, accounts AccountFilter) (*MemorySource, error) {
	f, err := os.Open(linesPath(repoRoot))
	if err != nil {
		return nil, fmt.Errorf("opening analytic lines: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading analytic lines: %w", err)
	}
	return NewMemorySource(lines, accounts), nil
}

// Lines returns every line held by the source.
func (s *MemorySource) Lines() []model.LedgerLine {
	return s.lines
}

type factKey struct {
	account  int
	currency string
}

// Fetch sums debit and credit per (account, currency) for the requested
// accounts. Output is ordered by account id, then currency.
func (s *MemorySource) Fetch(ctx context.Context, ids []int, q Query) ([]model.Fact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		a, ok := s.accounts.Get(id)
		if !ok || a.Type == model.AccountTypeView || !a.Active {
			continue
		}
		wanted[id] = true
	}

	sums := make(map[factKey]*model.Fact)
	for _, line := range s.lines {
		if !wanted[line.AccountID] || !q.Match(line) {
			continue
		}
		k := factKey{account: line.AccountID, currency: line.Currency}
		f, ok := sums[k]
		if !ok {
			f = &model.Fact{AccountID: line.AccountID, Currency: line.Currency, Debit: decimal.Zero, Credit: decimal.Zero}
			sums[k] = f
		}
		f.Debit = f.Debit.Add(line.Debit)
		f.Credit = f.Credit.Add(line.Credit)
	}

	facts := make([]model.Fact, 0, len(sums))
	for _, f := range sums {
		facts = append(facts, *f)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].AccountID != facts[j].AccountID {
			return facts[i].AccountID < facts[j].AccountID
		}
		return facts[i].Currency < facts[j].Currency
	})
	return facts, nil
}
