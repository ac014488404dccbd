package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/id"
	"github.com/cleared-dev/analytic/internal/model"
)

// LineError describes one invalid analytic line.
type LineError struct {
	LineID      string
	Description string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %s: %s", e.LineID, e.Description)
}

// Is matches errs.ErrInvalidArgument.
func (e LineError) Is(target error) bool {
	return target == errs.ErrInvalidArgument
}

// ValidateLines checks that every line books exactly one non-negative side on
// an active normal account, in a named currency, under a unique id.
func ValidateLines(lines []model.LedgerLine, accounts AccountFilter) []LineError {
	var lerrs []LineError
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		if line.ID == "" {
			lerrs = append(lerrs, LineError{LineID: "?", Description: "missing id"})
		} else if seen[line.ID] {
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: "duplicate id"})
		}
		seen[line.ID] = true

		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: "amounts can not be negative"})
		}
		if line.Debit.IsZero() == line.Credit.IsZero() {
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: "line must have exactly one of debit or credit"})
		}
		if len(line.Currency) != 3 || line.Currency != strings.ToUpper(line.Currency) {
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: fmt.Sprintf("invalid currency %q", line.Currency)})
		}

		a, ok := accounts.Get(line.AccountID)
		switch {
		case !ok:
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: fmt.Sprintf("unknown account %d", line.AccountID)})
		case a.Type != model.AccountTypeNormal:
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: fmt.Sprintf("account %d is a %s account", a.ID, a.Type)})
		case !a.Active:
			lerrs = append(lerrs, LineError{LineID: line.ID, Description: fmt.Sprintf("account %d is inactive", a.ID)})
		}
	}
	return lerrs
}

// Posting is one move line to be shared across analytic accounts, at most
// one per root. Every share carries the full amount.
type Posting struct {
	Date        time.Time
	MoveLine    string
	Description string
	Currency    string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	AccountIDs  []int
}

// Post validates a posting and appends one line per account to
// lines/analytic-lines.csv. It returns the lines written.
func Post(repoRoot string, accounts AccountFilter, p Posting) ([]model.LedgerLine, error) {
	if len(p.AccountIDs) == 0 {
		return nil, fmt.Errorf("posting needs at least one account: %w", errs.ErrInvalidArgument)
	}
	if len(p.AccountIDs) > id.MaxShares {
		return nil, fmt.Errorf("posting spans %d accounts, at most %d allowed: %w", len(p.AccountIDs), id.MaxShares, errs.ErrInvalidArgument)
	}

	path := linesPath(repoRoot)
	existing, err := readLinesFile(path)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(existing))
	for i, l := range existing {
		ids[i] = l.ID
	}
	year, month := p.Date.Year(), int(p.Date.Month())
	postingID := id.FormatPosting(year, month, id.NextSeq(ids, year, month))

	newLines := make([]model.LedgerLine, len(p.AccountIDs))
	for i, acct := range p.AccountIDs {
		newLines[i] = model.LedgerLine{
			ID:          id.FormatShare(postingID, i),
			Date:        p.Date,
			AccountID:   acct,
			Debit:       p.Debit,
			Credit:      p.Credit,
			Currency:    strings.ToUpper(p.Currency),
			MoveLine:    p.MoveLine,
			Description: p.Description,
		}
	}

	// Existing lines are validated for id clashes only.
	if lerrs := ValidateLines(newLines, accounts); len(lerrs) > 0 {
		return nil, joinLineErrors(lerrs)
	}
	for _, l := range existing {
		for _, n := range newLines {
			if l.ID == n.ID {
				return nil, LineError{LineID: n.ID, Description: "duplicate id"}
			}
		}
	}

	if err := appendLines(path, newLines, existing == nil); err != nil {
		return nil, err
	}
	return newLines, nil
}

func linesPath(repoRoot string) string {
	return filepath.Join(repoRoot, "lines", "analytic-lines.csv")
}

// readLinesFile returns nil when the file does not exist.
func readLinesFile(path string) ([]model.LedgerLine, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening analytic lines: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading analytic lines: %w", err)
	}
	if lines == nil {
		lines = []model.LedgerLine{}
	}
	return lines, nil
}

func appendLines(path string, lines []model.LedgerLine, isNew bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lines dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening analytic lines: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendLines(f, lines); err != nil {
		return fmt.Errorf("appending lines: %w", err)
	}
	return nil
}

func joinLineErrors(lerrs []LineError) error {
	joined := make([]error, len(lerrs))
	for i, le := range lerrs {
		joined[i] = le
	}
	return fmt.Errorf("invalid posting: %w", errors.Join(joined...))
}
