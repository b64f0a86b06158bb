package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "identityctl",
	Short: "Manage the identity server",
	Long: `identityctl manages the identity server: run it, migrate its database,
administer keys and prune the audit log.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
