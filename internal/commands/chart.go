package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/analytic/internal/report"
)

func newChartCommand(repoDir *string) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the open chart of analytic accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			chart, err := report.Build(ctx, p.engine, p.tree, period)
			if err != nil {
				return err
			}
			out, err := chart.Render(p.currencies.Digits)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first date included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date included (YYYY-MM-DD)")
	return cmd
}
