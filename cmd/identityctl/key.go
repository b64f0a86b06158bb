package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/db"
	gormstore "github.com/scriptmarket/identity-in-go/pkg/server/store/gorm"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Administer account keys",
	Long:  `Administer account keys directly against the database: disable compromised keys and attach recovery keys.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'key' requires a subcommand (disable, recover)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

// newAdminService connects to the database and builds the service the admin
// subcommands call. These commands act with operator privileges, so every
// action they take is audited with the local username as the admin subject.
func newAdminService() (*service.AccountService, error) {
	gormDB, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}
	return service.NewAccountService(gormstore.NewStore(gormDB), config.Get()), nil
}

func adminSubject(cmd *cobra.Command) string {
	if subject, _ := cmd.Flags().GetString("admin-subject"); subject != "" {
		return subject
	}
	if current, err := user.Current(); err == nil {
		return "cli:" + current.Username
	}
	return "cli:unknown"
}
