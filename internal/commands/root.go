package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repoDir string

	rootCmd := &cobra.Command{
		Use:     "analytic",
		Short:   "Analytic account roll-ups over a ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newBalanceCommand(&repoDir),
		newTotalsCommand(&repoDir),
		newChartCommand(&repoDir),
		newAccountsCommand(&repoDir),
		newSelectionCommand(&repoDir),
		newPostCommand(&repoDir),
		newImportCommand(&repoDir),
	)

	return rootCmd
}
