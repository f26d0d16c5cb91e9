package main

import (
	"context"
	"net"

	"gospc/adapters/api"
	"gospc/adapters/excel"
	"gospc/app"
	"gospc/internal"
	"gospc/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var data dataFlags
	var port string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drill-down API for a data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &data)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch") {
				cfg.Data.Watch = watch
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default $PORT or 8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the data file when it changes")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := internal.DefaultLogger.With("Serve")

	table, err := loadTable(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("loaded %d rows from %s (outcome %s, factors %v)", len(table.Rows), cfg.Data.File, cfg.Data.Outcome, cfg.Data.Factors)

	analysis, err := app.NewAnalysisService(table, analysisConfig(cfg))
	if err != nil {
		return err
	}

	db, sessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		logger.Info("drill sessions persisted with %s", cfg.Database.Driver)
	} else {
		logger.Info("DATABASE_URL not set; drill sessions are not persisted")
	}

	nav := app.NewNavigator(app.NavigatorConfig{
		Outcome:       cfg.Data.Outcome,
		RootLabel:     cfg.Data.RootLabel,
		FactorLabels:  cfg.Data.FactorLabels,
		EnableURLSync: cfg.Features.EnableURLSync,
		Sessions:      sessions,
	})

	if cfg.Data.Watch {
		reader := excel.NewDataReader(cfg.Data.File, excel.WithSheet(cfg.Data.Sheet))
		watcher, err := excel.NewWatcher(cfg.Data.File, cfg.Data.WatchDebounce, func() {
			if err := analysis.Reload(ctx, reader); err != nil {
				logger.Warn("reload of %s failed, keeping previous data: %v", cfg.Data.File, err)
			}
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	server := api.NewServer(analysis, nav, cfg.Server.GinMode)
	return server.Start(ctx, net.JoinHostPort("", cfg.Server.Port))
}
