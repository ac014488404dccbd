// Package storage keeps a project's chart, lines and currencies in SQLite and
// serves them to the aggregation engine.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"

	_ "modernc.org/sqlite"
)

// Amounts are stored as integer millionths so SUM stays exact.
const amountScale = 6

const dateFormat = "2006-01-02"

// Store is a SQLite-backed ledger line source and account repository.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies migrations.
// A nil logger discards output.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Snapshot is a full project load: chart, lines and currencies.
type Snapshot struct {
	Currencies []model.Currency
	Accounts   []model.Account
	Lines      []model.LedgerLine
}

// Import replaces the chart, lines and currencies inside one transaction.
// On error the store keeps its previous contents.
func (s *Store) Import(ctx context.Context, snap Snapshot) error {
	err := s.inTx(ctx, "snapshot", func(tx *sql.Tx) error {
		if err := insertCurrencies(ctx, tx, snap.Currencies); err != nil {
			return err
		}
		if err := insertAccounts(ctx, tx, snap.Accounts); err != nil {
			return err
		}
		return insertLines(ctx, tx, snap.Lines)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "snapshot imported",
		"accounts", len(snap.Accounts),
		"lines", len(snap.Lines),
		"currencies", len(snap.Currencies))
	return nil
}

// ImportChart replaces every stored account.
func (s *Store) ImportChart(ctx context.Context, accounts []model.Account) error {
	err := s.inTx(ctx, "accounts", func(tx *sql.Tx) error {
		return insertAccounts(ctx, tx, accounts)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "chart imported", "accounts", len(accounts))
	return nil
}

// ImportLines replaces every stored ledger line. Amounts with more than six
// decimal places, or too large for int64 micro-units, are rejected.
func (s *Store) ImportLines(ctx context.Context, lines []model.LedgerLine) error {
	err := s.inTx(ctx, "lines", func(tx *sql.Tx) error {
		return insertLines(ctx, tx, lines)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "lines imported", "lines", len(lines))
	return nil
}

// ImportCurrencies replaces the stored currency table.
func (s *Store) ImportCurrencies(ctx context.Context, currencies []model.Currency) error {
	return s.inTx(ctx, "currencies", func(tx *sql.Tx) error {
		return insertCurrencies(ctx, tx, currencies)
	})
}

func insertAccounts(ctx context.Context, tx *sql.Tx, accounts []model.Account) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO accounts
		(id, code, name, type, root_id, parent_id, currency, display_balance, active, mandatory, state, company, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range accounts {
		_, err := stmt.ExecContext(ctx, a.ID, a.Code, a.Name, string(a.Type),
			nullableID(a.RootID), nullableID(a.ParentID), a.Currency, string(a.DisplayBalance),
			a.Active, a.Mandatory, string(a.State), a.Company, a.Note)
		if err != nil {
			return fmt.Errorf("insert account %d: %w", a.ID, err)
		}
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, lines []model.LedgerLine) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM lines`); err != nil {
		return fmt.Errorf("clear lines: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lines
		(id, date, account_id, debit_micros, credit_micros, currency, move_line, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		debit, err := toMicros(l.Debit)
		if err != nil {
			return fmt.Errorf("line %s debit: %w", l.ID, err)
		}
		credit, err := toMicros(l.Credit)
		if err != nil {
			return fmt.Errorf("line %s credit: %w", l.ID, err)
		}
		_, err = stmt.ExecContext(ctx, l.ID, l.Date.Format(dateFormat), l.AccountID,
			debit, credit, l.Currency, l.MoveLine, l.Description)
		if err != nil {
			return fmt.Errorf("insert line %s: %w", l.ID, err)
		}
	}
	return nil
}

func insertCurrencies(ctx context.Context, tx *sql.Tx, currencies []model.Currency) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM currencies`); err != nil {
		return fmt.Errorf("clear currencies: %w", err)
	}
	for _, c := range currencies {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO currencies (code, name, digits, rate) VALUES (?, ?, ?, ?)`,
			strings.ToUpper(c.Code), c.Name, c.Digits, c.Rate.String())
		if err != nil {
			return fmt.Errorf("insert currency %s: %w", c.Code, err)
		}
	}
	return nil
}

// Currencies returns the stored currency table ordered by code.
func (s *Store) Currencies(ctx context.Context) ([]model.Currency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, digits, rate FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	var out []model.Currency
	for rows.Next() {
		var (
			c    model.Currency
			rate string
		)
		if err := rows.Scan(&c.Code, &c.Name, &c.Digits, &rate); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		c.Rate, err = decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("currency %s rate %q: %w", c.Code, rate, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Fetch sums debit and credit per (account, currency) for the requested
// accounts, skipping view and inactive accounts. Output is ordered by account
// id, then currency.
func (s *Store) Fetch(ctx context.Context, ids []int, q ledger.Query) ([]model.Fact, error) {
	facts := make([]model.Fact, 0)
	if len(ids) == 0 {
		return facts, nil
	}

	query := `SELECT l.account_id, l.currency, SUM(l.debit_micros), SUM(l.credit_micros)
		FROM lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE a.type != 'view' AND a.active = 1
		AND l.account_id IN (` + placeholders(len(ids)) + `)`
	args := intArgs(ids)
	if !q.Start.IsZero() {
		query += ` AND l.date >= ?`
		args = append(args, q.Start.Format(dateFormat))
	}
	if !q.End.IsZero() {
		query += ` AND l.date <= ?`
		args = append(args, q.End.Format(dateFormat))
	}
	query += ` GROUP BY l.account_id, l.currency ORDER BY l.account_id, l.currency`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f             model.Fact
			debit, credit int64
		)
		if err := rows.Scan(&f.AccountID, &f.Currency, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.Debit = decimal.New(debit, -amountScale)
		f.Credit = decimal.New(credit, -amountScale)
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "fetched facts", "accounts", len(ids), "facts", len(facts))
	return facts, nil
}

// DescendantsOf returns ids plus every transitive child, ordered by id.
// Unknown ids are a configuration error.
func (s *Store) DescendantsOf(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := s.Accounts(ctx, ids); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `WITH RECURSIVE sub(id) AS (
			SELECT id FROM accounts WHERE id IN (`+placeholders(len(ids))+`)
			UNION
			SELECT a.id FROM accounts a JOIN sub ON a.parent_id = sub.id
		)
		SELECT id FROM sub ORDER BY id`, intArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query descendants: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan descendant: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Accounts loads the requested accounts keyed by id.
func (s *Store) Accounts(ctx context.Context, ids []int) (map[int]model.Account, error) {
	out := make(map[int]model.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	accts, err := s.queryAccounts(ctx, ` WHERE id IN (`+placeholders(len(ids))+`)`, intArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, a := range accts {
		out[a.ID] = a
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("account %d: unknown account: %w", id, errs.ErrConfiguration)
		}
	}
	return out, nil
}

// Chart returns every stored account ordered by id.
func (s *Store) Chart(ctx context.Context) ([]model.Account, error) {
	return s.queryAccounts(ctx, ` ORDER BY id`)
}

func (s *Store) queryAccounts(ctx context.Context, where string, args ...any) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, type, root_id, parent_id, currency,
		display_balance, active, mandatory, state, company, note FROM accounts`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var (
			a                model.Account
			rootID, parentID sql.NullInt64
			typ, display, st string
		)
		err := rows.Scan(&a.ID, &a.Code, &a.Name, &typ, &rootID, &parentID, &a.Currency,
			&display, &a.Active, &a.Mandatory, &st, &a.Company, &a.Note)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = model.AccountType(typ)
		a.DisplayBalance = model.DisplayBalance(display)
		a.State = model.AccountState(st)
		a.RootID = int(rootID.Int64)
		a.ParentID = int(parentID.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}

// inTx runs fill inside one transaction and commits only if it succeeds.
func (s *Store) inTx(ctx context.Context, what string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s import: %w", what, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fill(tx); err != nil {
		return fmt.Errorf("import %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s import: %w", what, err)
	}
	return nil
}

func toMicros(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(amountScale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places: %w", d, amountScale, errs.ErrInvalidArgument)
	}
	micros := shifted.BigInt()
	if !micros.IsInt64() {
		return 0, fmt.Errorf("amount %s is out of range: %w", d, errs.ErrInvalidArgument)
	}
	return micros.Int64(), nil
}

func nullableID(id int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
