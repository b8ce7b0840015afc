package main

import (
	"github.com/spf13/cobra"

	"seals/api/internal/config"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "roster",
		Short:        "Inspect and seed the Manchester Seals roster",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(cfg), newSeedCmd(cfg), newShowCmd(cfg))
	return root
}
