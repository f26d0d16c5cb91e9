package main

import (
	"context"

	"gospc/adapters/excel"
	"gospc/adapters/sqlstore"
	"gospc/app"
	"gospc/domain/dataset"
	"gospc/domain/drill"
	"gospc/internal"
	"gospc/internal/config"
	"gospc/internal/errors"
	"gospc/internal/migration"
	"gospc/ports"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// dataFlags are the dataset overrides shared by analyze and serve
type dataFlags struct {
	file    string
	sheet   string
	outcome string
	factors string
	usl     float64
	lsl     float64
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "CSV or XLSX data file (default $DATA_FILE)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read from an XLSX file")
	cmd.Flags().StringVarP(&f.outcome, "outcome", "o", "", "Numeric outcome column (default: first numeric column)")
	cmd.Flags().StringVar(&f.factors, "factors", "", "Comma separated factor columns (default: every categorical column)")
	cmd.Flags().Float64Var(&f.usl, "usl", 0, "Upper specification limit")
	cmd.Flags().Float64Var(&f.lsl, "lsl", 0, "Lower specification limit")
}

// loadConfig reads .env and the environment, then applies explicit flags
func loadConfig(cmd *cobra.Command, flags *dataFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	if flags == nil {
		return cfg, nil
	}
	if flags.file != "" {
		cfg.Data.File = flags.file
	}
	if flags.sheet != "" {
		cfg.Data.Sheet = flags.sheet
	}
	if flags.outcome != "" {
		cfg.Data.Outcome = flags.outcome
	}
	if flags.factors != "" {
		cfg.Data.Factors = config.SplitList(flags.factors)
	}
	if cmd.Flags().Changed("usl") {
		usl := flags.usl
		cfg.Data.Limits.USL = &usl
	}
	if cmd.Flags().Changed("lsl") {
		lsl := flags.lsl
		cfg.Data.Limits.LSL = &lsl
	}
	limits := cfg.Data.Limits
	if limits.USL != nil && limits.LSL != nil && *limits.USL <= *limits.LSL {
		return nil, errors.ConfigInvalid("USL must be greater than LSL")
	}
	return cfg, nil
}

// loadTable reads the configured data file and fills in outcome and factors
// from the column kinds when they were not given
func loadTable(ctx context.Context, cfg *config.Config) (*dataset.Table, error) {
	if cfg.Data.File == "" {
		return nil, errors.ConfigInvalid("no data file given; use --file or DATA_FILE")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader := excel.NewDataReader(cfg.Data.File, excel.WithSheet(cfg.Data.Sheet))
	data, err := reader.ReadData()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", cfg.Data.File)
	}

	if cfg.Data.Outcome == "" || len(cfg.Data.Factors) == 0 {
		outcome, factors := excel.SuggestColumns(data)
		if cfg.Data.Outcome == "" {
			cfg.Data.Outcome = outcome
		}
		if len(cfg.Data.Factors) == 0 {
			for _, f := range factors {
				if f != cfg.Data.Outcome {
					cfg.Data.Factors = append(cfg.Data.Factors, f)
				}
			}
		}
	}
	if cfg.Data.Outcome == "" {
		return nil, errors.ConfigInvalid("no numeric outcome column found; use --outcome")
	}

	return excel.ToTable(data), nil
}

func analysisConfig(cfg *config.Config) app.AnalysisConfig {
	return app.AnalysisConfig{
		Outcome:   cfg.Data.Outcome,
		Factors:   cfg.Data.Factors,
		Limits:    cfg.Data.Limits,
		RootLabel: cfg.Data.RootLabel,
		MemoSize:  cfg.Cache.MemoSize,
	}
}

// openSessionStore connects and migrates the session database. It returns a
// nil repository when persistence is disabled.
func openSessionStore(ctx context.Context, cfg *config.Config) (*sqlx.DB, ports.DrillSessionRepository, error) {
	if !cfg.Database.Enabled() {
		return nil, nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, errors.DatabaseError("failed to connect to session database", err)
	}
	if cfg.Database.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, nil, errors.DatabaseError("session database migration failed", err)
	}

	return db, sqlstore.NewSessionRepository(db, drill.Options{FactorLabels: cfg.Data.FactorLabels}), nil
}
