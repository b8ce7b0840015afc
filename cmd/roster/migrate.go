package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seals/api/internal/config"
	"seals/api/internal/store"
)

func newMigrateCmd(cfg config.Config) *cobra.Command {
	var (
		driver, databaseURL, dir string
		down                     bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the roster schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cmd.Context(), driver, databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if down {
				reverted, err := store.RollbackMigrations(cmd.Context(), db, driver, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d migrations\n", reverted)
				return nil
			}
			applied, err := store.ApplyMigrations(cmd.Context(), db, driver, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations\n", applied)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", cfg.StoreDriver, "Store driver (pgx or sqlite)")
	cmd.Flags().StringVar(&databaseURL, "database-url", cfg.DatabaseURL, "Database connection string")
	cmd.Flags().StringVar(&dir, "dir", cfg.MigrationsDir, "Migrations directory")
	cmd.Flags().BoolVar(&down, "down", false, "Roll back every applied migration")
	return cmd
}
