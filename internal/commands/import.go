package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/config"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/logging"
	"github.com/cleared-dev/analytic/internal/storage"
)

func newImportCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV chart, lines and currencies into the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := config.Load(configPath(root))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
			if err != nil {
				return err
			}

			svc, err := accounts.Load(root)
			if err != nil {
				return err
			}
			t, err := svc.Tree()
			if err != nil {
				return err
			}
			src, err := ledger.Load(root, t)
			if err != nil {
				return err
			}

			path := sqlitePath(root, cfg)
			store, err := storage.Open(path, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			err = store.Import(cmd.Context(), storage.Snapshot{
				Currencies: cfg.Currencies,
				Accounts:   svc.All(),
				Lines:      src.Lines(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts and %d lines into %s\n",
				len(svc.All()), len(src.Lines()), path)
			return nil
		},
	}
}
