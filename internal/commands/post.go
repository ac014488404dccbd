package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/config"
	"github.com/cleared-dev/analytic/internal/ledger"
	"github.com/cleared-dev/analytic/internal/model"
	"github.com/cleared-dev/analytic/internal/selection"
	"github.com/cleared-dev/analytic/internal/tree"
)

// loadTree reads the CSV chart. Posting appends to the CSV lines file, so it
// validates against the CSV chart whatever the storage backend.
func loadTree(repoDir string) (*tree.Tree, string, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path: %w", err)
	}
	svc, err := accounts.Load(root)
	if err != nil {
		return nil, "", err
	}
	t, err := svc.Tree()
	if err != nil {
		return nil, "", err
	}
	return t, root, nil
}

func newPostCommand(repoDir *string) *cobra.Command {
	var (
		dateStr     string
		debitStr    string
		creditStr   string
		currency    string
		moveLine    string
		description string
		accountIDs  []int
		actor       selection.Actor
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Share a move line across analytic accounts, one per root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse(dateLayout, dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", dateStr)
			}
			debit, err := optionalAmount("debit", debitStr)
			if err != nil {
				return err
			}
			credit, err := optionalAmount("credit", creditStr)
			if err != nil {
				return err
			}

			t, root, err := loadTree(*repoDir)
			if err != nil {
				return err
			}
			if err := selection.NewChecker(t).Check(model.Selection{AccountIDs: accountIDs}, actor); err != nil {
				return err
			}
			if currency == "" {
				cfg, err := config.Load(configPath(root))
				if err != nil {
					return err
				}
				currency = cfg.Company.Currency
			}

			written, err := ledger.Post(root, t, ledger.Posting{
				Date:        date,
				MoveLine:    moveLine,
				Description: description,
				Currency:    currency,
				Debit:       debit,
				Credit:      credit,
				AccountIDs:  accountIDs,
			})
			if err != nil {
				return err
			}
			for _, l := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", l.ID, l.AccountID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "booking date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().IntSliceVar(&accountIDs, "account", nil, "analytic account id, repeatable (one per root)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&debitStr, "debit", "", "debit amount")
	cmd.Flags().StringVar(&creditStr, "credit", "", "credit amount")
	cmd.MarkFlagsMutuallyExclusive("debit", "credit")
	cmd.MarkFlagsOneRequired("debit", "credit")
	cmd.Flags().StringVar(&currency, "currency", "", "currency of the move line (default: company currency)")
	cmd.Flags().StringVar(&moveLine, "move-line", "", "reference of the originating move line")
	cmd.Flags().StringVar(&description, "description", "", "line description")
	cmd.Flags().BoolVar(&actor.Privileged, "privileged", false, "post as a system actor, skipping mandatory roots")
	return cmd
}

func optionalAmount(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	amt, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return amt, nil
}
