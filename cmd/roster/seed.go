package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seals/api/internal/config"
	"seals/api/internal/roster"
	"seals/api/internal/store"
)

func newSeedCmd(cfg config.Config) *cobra.Command {
	var driver, databaseURL string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the default roster into an empty database",
		Long: `Seed applies migrations and inserts the default six-player roster.
A roster table that already holds entries is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := store.NewHandle(driver, databaseURL, cfg.MigrationsDir)
			defer handle.Close()

			written, err := store.NewRosterStore(handle).Seed(cmd.Context(), roster.DefaultSeed())
			if err != nil {
				return fmt.Errorf("seeding roster: %w", err)
			}
			if written == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Roster already populated, nothing written")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d roster entries\n", written)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", cfg.StoreDriver, "Store driver (pgx or sqlite)")
	cmd.Flags().StringVar(&databaseURL, "database-url", cfg.DatabaseURL, "Database connection string")
	return cmd
}
