package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// keyRecoverCmd represents the key recover command
var keyRecoverCmd = &cobra.Command{
	Use:   "recover USERNAME PUBLIC_KEY_BASE64",
	Short: "Attach a recovery key to an account",
	Long: `Attach a new active key to an account without a signed request.

Use this to restore access after all of an account's keys were disabled.
The public key is passed base64-encoded (standard encoding).

Example:
  identityctl key recover alice hV3... --algorithm ed25519 --reason "identity verified out of band"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		algorithm, _ := cmd.Flags().GetString("algorithm")
		reason, _ := cmd.Flags().GetString("reason")

		publicKey, err := base64.StdEncoding.DecodeString(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "Bad public key:", err)
			os.Exit(1)
		}

		accounts, err := newAdminService()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		key, err := accounts.AdminAddRecoveryKey(context.Background(), service.AdminRecoveryKeyRequest{
			Username:     args[0],
			Algorithm:    algorithm,
			PublicKey:    publicKey,
			Reason:       reason,
			AdminSubject: adminSubject(cmd),
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to add recovery key:", err)
			os.Exit(1)
		}

		fmt.Printf("Added recovery key %s (principal %s) to %s\n", key.ID, key.Principal, args[0])
	},
}

func init() {
	keyCmd.AddCommand(keyRecoverCmd)
	keyRecoverCmd.Flags().String("algorithm", "ed25519", "key algorithm (ed25519 or secp256k1)")
	keyRecoverCmd.Flags().String("reason", "", "reason recorded in the audit log (required)")
	keyRecoverCmd.Flags().String("admin-subject", "", "admin identity recorded in the audit log (default: local user)")
	_ = keyRecoverCmd.MarkFlagRequired("reason")
}
