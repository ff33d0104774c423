package main

import (
	"errors"
	"fmt"

	"gadgetbench/internal/config"
	"gadgetbench/internal/ui"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one run's averages",
		Long: `Without arguments, lists the most recent runs. With a run id (or a
unique prefix of one), shows that run's benchmarks and average deltas.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := config.Current()
			if s.HistoryType == "none" {
				return errors.New("run history is disabled (history.type is none)")
			}
			if noColor {
				ui.DisableColor()
			}

			store, err := storeFactory(s)
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer store.Close()

			var out string
			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err = ui.RenderRun(run)
				if err != nil {
					return err
				}
			} else {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out, err = ui.RenderHistory(runs)
				if err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colour output")
	return cmd
}
