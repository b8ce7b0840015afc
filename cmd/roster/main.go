// Command roster is the operator CLI for the Seals roster: it seeds the
// database and prints the roster from any of the three sources.
package main

import (
	"os"

	"seals/api/internal/config"
)

func main() {
	config.LoadEnvFiles(config.DefaultEnvFiles...)
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
