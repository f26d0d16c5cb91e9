package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gospc/app"
	"gospc/internal/config"
	"gospc/internal/errors"
	"gospc/internal/report"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	data    dataFlags
	filters string
	format  string
	title   string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print capability, control signals and variation for a data file",
		Long: `Analyze a CSV or XLSX file once and print a report.

Filters use the same form as the web query string, for example:

  spc analyze -f fill.csv -o FillWeight --usl 104 --lsl 96 --filters "Machine:B;Shift:Night"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &opts.data)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	opts.data.register(cmd)
	cmd.Flags().StringVar(&opts.filters, "filters", "", "Drill filters as factor:v1,v2;factor2:v3")
	cmd.Flags().StringVar(&opts.format, "format", "markdown", "Output format: markdown, html or json")
	cmd.Flags().StringVar(&opts.title, "title", "", "Report title")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, cfg *config.Config, opts *analyzeOptions) error {
	switch opts.format {
	case "markdown", "html", "json":
	default:
		return errors.InvalidInput("unknown format " + opts.format)
	}

	table, err := loadTable(ctx, cfg)
	if err != nil {
		return err
	}

	analysis, err := app.NewAnalysisService(table, analysisConfig(cfg))
	if err != nil {
		return err
	}
	nav := app.NewNavigator(app.NavigatorConfig{
		Outcome:       cfg.Data.Outcome,
		RootLabel:     cfg.Data.RootLabel,
		FactorLabels:  cfg.Data.FactorLabels,
		EnableURLSync: true,
	})
	if opts.filters != "" {
		nav.ApplyQuery(opts.filters)
	}

	snap, err := analysis.Analyze(ctx, nav.State())
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "html":
		_, err = out.Write(report.HTML(app.ReportInput(snap, opts.title)))
		return err
	default:
		_, err = fmt.Fprint(out, report.Markdown(app.ReportInput(snap, opts.title)))
		return err
	}
}
