package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/aggregate"
	"github.com/cleared-dev/analytic/internal/config"
	"github.com/cleared-dev/analytic/internal/currency"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/logging"
	"github.com/cleared-dev/analytic/internal/model"
	"github.com/cleared-dev/analytic/internal/report"
	"github.com/cleared-dev/analytic/internal/storage"
	"github.com/cleared-dev/analytic/internal/tree"
)

const dateLayout = "2006-01-02"

// project is a loaded analytic repo ready for computation.
type project struct {
	root       string
	cfg        *config.Config
	logger     *slog.Logger
	tree       *tree.Tree
	currencies *currency.Table
	engine     *aggregate.Engine
	close      func() error
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, config.FileName)
}

// openProject loads config, chart, lines and currencies from the configured
// storage backend. The caller must call close.
func openProject(ctx context.Context, repoRoot string, logOut io.Writer) (*project, error) {
	cfg, err := config.Load(configPath(repoRoot))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(logOut, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	p := &project{root: repoRoot, cfg: cfg, logger: logger, close: func() error { return nil }}
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		err = p.openSQLite(ctx)
	default:
		err = p.openCSV()
	}
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "project loaded",
		"repo", repoRoot,
		"backend", cfg.Storage.Backend,
		"accounts", p.tree.Len())
	return p, nil
}

func (p *project) openCSV() error {
	svc, err := accounts.Load(p.root)
	if err != nil {
		return err
	}
	p.tree, err = svc.Tree()
	if err != nil {
		return err
	}
	p.currencies, err = currency.NewTable(p.cfg.Currencies)
	if err != nil {
		return err
	}
	lines, err := ledger.Load(p.root, p.tree)
	if err != nil {
		return err
	}
	p.engine = aggregate.New(p.tree, lines, p.currencies, p.logger)
	return nil
}

func (p *project) openSQLite(ctx context.Context) error {
	store, err := storage.Open(sqlitePath(p.root, p.cfg), p.logger)
	if err != nil {
		return err
	}
	p.close = store.Close

	chart, err := store.Chart(ctx)
	if err != nil {
		store.Close()
		return err
	}
	p.tree, err = accounts.NewService(chart).Tree()
	if err != nil {
		store.Close()
		return err
	}

	curs, err := store.Currencies(ctx)
	if err != nil {
		store.Close()
		return err
	}
	if len(curs) == 0 {
		curs = p.cfg.Currencies
	}
	p.currencies, err = currency.NewTable(curs)
	if err != nil {
		store.Close()
		return err
	}
	p.engine = aggregate.New(store, store, p.currencies, p.logger)
	return nil
}

func sqlitePath(repoRoot string, cfg *config.Config) string {
	path := cfg.Storage.SQLitePath
	if path == "" {
		path = filepath.Join(".analytic", "analytic.db")
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// account returns the account with id or a not-found error.
func (p *project) account(id int) (model.Account, error) {
	a, ok := p.tree.Get(id)
	if !ok {
		return model.Account{}, fmt.Errorf("account %d not found", id)
	}
	return a, nil
}

// formatAmount renders amount with the digits of the account currency.
func (p *project) formatAmount(a model.Account, amount decimal.Decimal) (string, error) {
	digits, err := p.currencies.Digits(a.Currency)
	if err != nil {
		return "", err
	}
	return amount.StringFixed(digits) + " " + a.Currency, nil
}

// printAmounts writes one "id  name  amount currency" line per requested id.
func (p *project) printAmounts(cmd *cobra.Command, ids []int, amounts map[int]decimal.Decimal) error {
	out := cmd.OutOrStdout()
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		a, err := p.account(id)
		if err != nil {
			return err
		}
		amount, err := p.formatAmount(a, amounts[id])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", id, a.RecName(), amount)
	}
	return nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid account id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func parsePeriod(start, end string) (report.Period, error) {
	var p report.Period
	var err error
	if start != "" {
		if p.Start, err = time.Parse(dateLayout, start); err != nil {
			return p, fmt.Errorf("invalid --start %q: want YYYY-MM-DD", start)
		}
	}
	if end != "" {
		if p.End, err = time.Parse(dateLayout, end); err != nil {
			return p, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", end)
		}
	}
	return p, nil
}
