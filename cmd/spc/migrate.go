package main

import (
	"fmt"

	"gospc/internal/errors"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var driver, url string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the drill session tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.Database.Driver = driver
			}
			if url != "" {
				cfg.Database.URL = url
			}
			if !cfg.Database.Enabled() {
				return errors.ConfigInvalid("DATABASE_URL is required")
			}

			db, _, err := openSessionStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Session schema is up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "Database driver: postgres or sqlite (default $DB_DRIVER)")
	cmd.Flags().StringVar(&url, "database-url", "", "Database URL or sqlite path (default $DATABASE_URL)")

	return cmd
}
