package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/aggregate"
)

func newBalanceCommand(repoDir *string) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "balance <account-id>...",
		Short: "Show rolled-up balances of accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			period, err := parsePeriod(start, end)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			ctx := cmd.Context()
			p, err := openProject(ctx, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.close()

			balances, err := p.engine.ComputeBalances(ctx, ids, period.Query())
			if err != nil {
				return err
			}
			return p.printAmounts(cmd, ids, balances)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date included (YYYY-MM-DD)")
	return cmd
}

func newTotalsCommand(repoDir *string) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "totals <credit|debit> <account-id>...",
		Short: "Show credit or debit totals of accounts, without descendants",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := aggregate.ParseKind(args[0])
			if err != nil {
				return err
			}
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			period, err := parsePeriod(start, end)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			ctx := cmd.Context()
			p, err := openProject(ctx, root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer p.close()

			totals, err := p.engine.ComputeCreditDebit(ctx, ids, period.Query(), kind)
			if err != nil {
				return err
			}
			return p.printAmounts(cmd, ids, totals)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date included (YYYY-MM-DD)")
	return cmd
}
