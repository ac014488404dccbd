package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/config"
	"github.com/cleared-dev/analytic/internal/ledger"
)

func newInitCommand() *cobra.Command {
	var name string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new analytic project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, name, currency); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized analytic project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "company currency")

	return cmd
}

func runInit(dir, name, currency string) error {
	if _, err := os.Stat(configPath(dir)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	for _, d := range []string{"accounts", "lines"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write analytic.yaml.
	cfg := config.Default(name, currency)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configPath(dir), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write chart of accounts.
	chart := accounts.DefaultChart(accounts.Defaults{Company: cfg.Company.Name, Currency: cfg.Company.Currency})
	if err := accounts.NewService(chart).Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	// Write an empty line file and selections.
	f, err := os.Create(filepath.Join(dir, "lines", "analytic-lines.csv"))
	if err != nil {
		return fmt.Errorf("creating analytic lines: %w", err)
	}
	defer f.Close()
	if err := ledger.WriteLines(f, nil); err != nil {
		return fmt.Errorf("writing analytic lines: %w", err)
	}
	if err := accounts.SaveSelections(dir, nil); err != nil {
		return fmt.Errorf("writing selections: %w", err)
	}

	// Keep the SQLite cache out of version control.
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".analytic/\n.env\n"), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
