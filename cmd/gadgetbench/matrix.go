package main

import (
	"fmt"
	"text/tabwriter"

	"gadgetbench/internal/config"
	"gadgetbench/internal/matrix"

	"github.com/spf13/cobra"
)

func newMatrixCmd() *cobra.Command {
	var extraFlags string
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show the scheduling configurations and their compiler flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := matrix.Default(config.Current().BaseFlags, extraFlags)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CONFIGURATION\tROLE\tFLAGS")
			for i, cfg := range m.Configurations() {
				role := "variant"
				if i == 0 {
					role = "baseline"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", cfg.Name, role, cfg.FlagString())
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nFingerprint: %s\n", m.Fingerprint())
			return nil
		},
	}
	cmd.Flags().StringVar(&extraFlags, "flags", "", "Extra compiler flags added to every configuration")
	return cmd
}
