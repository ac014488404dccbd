package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/accounts"
	"github.com/cleared-dev/analytic/internal/model"
	"github.com/cleared-dev/analytic/internal/selection"
)

func newSelectionCommand(repoDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Validate analytic account selections",
	}
	cmd.AddCommand(
		newSelectionCheckCommand(repoDir),
		newSelectionVerifyCommand(repoDir),
		newSelectionFieldsCommand(repoDir),
	)
	return cmd
}

// openSelectionProject loads the chart from the configured backend so
// selections are checked against the snapshot the engine aggregates over.
func openSelectionProject(cmd *cobra.Command, repoDir string) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return openProject(cmd.Context(), root, cmd.ErrOrStderr())
}

func newSelectionCheckCommand(repoDir *string) *cobra.Command {
	var actor selection.Actor

	cmd := &cobra.Command{
		Use:   "check <account-id>...",
		Short: "Check that a set of accounts is a valid selection",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			p, err := openSelectionProject(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer p.close()

			if err := selection.NewChecker(p.tree).Check(model.Selection{AccountIDs: ids}, actor); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "selection OK")
			return nil
		},
	}

	cmd.Flags().BoolVar(&actor.Privileged, "privileged", false, "save as a system actor, skipping mandatory roots")
	cmd.Flags().StringVar(&actor.Name, "actor", "", "name of the saving actor")
	return cmd
}

func newSelectionVerifyCommand(repoDir *string) *cobra.Command {
	var actor selection.Actor

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every stored selection in accounts/selections.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openSelectionProject(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer p.close()

			sels, err := accounts.LoadSelections(p.root)
			if err != nil {
				return err
			}

			failures := selection.NewChecker(p.tree).CheckAll(sels, actor)
			if len(failures) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d selections OK\n", len(sels))
				return nil
			}
			ids := make([]int, 0, len(failures))
			for id := range failures {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				fmt.Fprintln(cmd.ErrOrStderr(), failures[id].Error())
			}
			return fmt.Errorf("%d of %d selections invalid", len(failures), len(sels))
		},
	}

	cmd.Flags().BoolVar(&actor.Privileged, "privileged", false, "check as a system actor, skipping mandatory roots")
	return cmd
}

func newSelectionFieldsCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List one selection field per root with its choices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openSelectionProject(cmd, *repoDir)
			if err != nil {
				return err
			}
			defer p.close()

			out := cmd.OutOrStdout()
			for _, f := range selection.Fields(p.tree) {
				required := ""
				if f.Required {
					required = " (required)"
				}
				choices := make([]string, len(f.Choices))
				for i, c := range f.Choices {
					choices[i] = fmt.Sprintf("%d", c.ID)
				}
				fmt.Fprintf(out, "%s\t%s%s\t%s\n", f.Name, f.Root.RecName(), required, strings.Join(choices, ","))
			}
			return nil
		},
	}
}
