package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/audit"
	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/db"
)

// auditPruneCmd represents the audit prune command
var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than the retention window",
	Long: `Delete audit entries older than the retention window.

The retention window defaults to the configured audit_retention_days.
Entries recent enough to serve replay detection are never pruned,
whatever retention is requested.

Example:
  identityctl audit prune
  identityctl audit prune --days 30`,
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = config.Get().AuditRetentionDays
		}
		if days <= 0 {
			fmt.Fprintln(os.Stderr, "No retention window configured; pass --days")
			os.Exit(1)
		}

		pruner, err := audit.NewPruner(db.URL())
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}
		defer func() { _ = pruner.Close() }()

		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		deleted, err := pruner.Prune(context.Background(), cutoff)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Prune failed:", err)
			os.Exit(1)
		}

		fmt.Printf("Pruned %d audit entries older than %s\n", deleted, cutoff.Format(time.RFC3339))
	},
}

func init() {
	auditCmd.AddCommand(auditPruneCmd)
	auditPruneCmd.Flags().Int("days", 0, "retention window in days (default: configured audit_retention_days)")
}
