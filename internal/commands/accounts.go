package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/config"
	"github.com/cleared-dev/analytic/internal/model"
)

func newAccountsCommand(repoDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and edit the chart of accounts",
	}
	cmd.AddCommand(
		newAccountsSearchCommand(repoDir),
		newAccountsAddCommand(repoDir),
		newAccountsCheckCommand(repoDir),
	)
	return cmd
}

func newAccountsSearchCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Find accounts by code prefix, falling back to name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			svc, err := accounts.Load(root)
			if err != nil {
				return err
			}
			for _, a := range svc.Search(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", a.ID, a.RecName(), a.Type)
			}
			return nil
		},
	}
}

func newAccountsAddCommand(repoDir *string) *cobra.Command {
	var (
		code     string
		id       int
		parentID int
		typ      string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account under an existing parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := config.Load(configPath(root))
			if err != nil {
				return err
			}
			svc, err := accounts.Load(root)
			if err != nil {
				return err
			}
			parent, ok := svc.Get(parentID)
			if !ok {
				return fmt.Errorf("parent account %d not found", parentID)
			}

			switch {
			case id < 0:
				return fmt.Errorf("invalid account id %d", id)
			case id > 0 && svc.Exists(id):
				return fmt.Errorf("account %d already exists", id)
			case id == 0:
				id = 1
				for _, a := range svc.All() {
					if a.ID >= id {
						id = a.ID + 1
					}
				}
			}
			acct := accounts.Defaults{Company: cfg.Company.Name, Currency: cfg.Company.Currency}.New(id, args[0])
			acct.Code = code
			acct.Type = model.AccountType(typ)
			acct.RootID = parent.Root()
			acct.ParentID = parent.ID
			if currency != "" {
				acct.Currency = strings.ToUpper(currency)
			}

			chart := append(svc.All(), acct)
			updated := accounts.NewService(chart)
			if _, err := updated.Tree(); err != nil {
				return err
			}
			if err := updated.Save(root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %d %s\n", acct.ID, acct.RecName())
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "account code")
	cmd.Flags().IntVar(&id, "id", 0, "account id (default: next free id)")
	cmd.Flags().IntVar(&parentID, "parent", 0, "parent account id (required)")
	_ = cmd.MarkFlagRequired("parent")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeNormal), "account type (view or normal)")
	cmd.Flags().StringVar(&currency, "currency", "", "account currency (default: company currency)")
	return cmd
}

func newAccountsCheckCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(*repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			svc, err := accounts.Load(root)
			if err != nil {
				return err
			}
			if verrs := accounts.ValidateAccounts(svc.All()); len(verrs) > 0 {
				for _, ve := range verrs {
					fmt.Fprintln(cmd.ErrOrStderr(), ve.Error())
				}
				return fmt.Errorf("%d invalid account fields", len(verrs))
			}
			t, err := svc.Tree()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d accounts under %d roots OK\n", t.Len(), len(t.Roots()))
			return nil
		},
	}
}
