package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// keyDisableCmd represents the key disable command
var keyDisableCmd = &cobra.Command{
	Use:   "disable KEY_ID",
	Short: "Disable a key",
	Long: `Disable a key as an administrative override.

Unlike the signed API flow, this may disable the last active key of an
account, locking it until a recovery key is attached.

Example:
  identityctl key disable 5f1b...d9 --reason "reported compromise"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reason, _ := cmd.Flags().GetString("reason")

		accounts, err := newAdminService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		key, err := accounts.AdminDisableKey(context.Background(), service.AdminDisableKeyRequest{
			KeyID:        args[0],
			Reason:       reason,
			AdminSubject: adminSubject(cmd),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to disable key:", err)
			os.Exit(1)
		}

		fmt.Printf("Disabled key %s (principal %s)\n", key.ID, key.Principal)
	},
}

func init() {
	keyCmd.AddCommand(keyDisableCmd)
	keyDisableCmd.Flags().String("reason", "", "reason recorded in the audit log (required)")
	keyDisableCmd.Flags().String("admin-subject", "", "admin identity recorded in the audit log (default: local user)")
	_ = keyDisableCmd.MarkFlagRequired("reason")
}
