package main

import (
	"fmt"

	"gospc/internal/testkit"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	cfg := testkit.DefaultSPCConfig()
	var out string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a synthetic fill-weight dataset with known factor effects",
		Long: `Write a synthetic fill-weight dataset. Machine B runs about 3g heavy,
the night shift adds a little, and Operator has no effect, so drilling
Machine first should explain most of the variation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := testkit.NewSPCDataGenerator(cfg).Generate()
			if err != nil {
				return err
			}
			if err := testkit.WriteCSV(out, table); err != nil {
				return err
			}

			limits := testkit.DefaultSpecLimits()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows to %s\n", humanize.Comma(int64(len(table.Rows))), out)
			fmt.Fprintf(cmd.OutOrStdout(), "Try: spc analyze -f %s -o %s --usl %g --lsl %g\n", out, cfg.Outcome, *limits.USL, *limits.LSL)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "fill_weight.csv", "Output CSV path")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of rows")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	cmd.Flags().Float64Var(&cfg.MissingRate, "missing-rate", 0, "Share of rows with an empty outcome")
	cmd.Flags().IntVar(&cfg.ShiftAfter, "shift-after", 0, "Shift the process mean from this row on")
	cmd.Flags().Float64Var(&cfg.ShiftSize, "shift-size", 2, "Size of the mean shift")

	return cmd
}
