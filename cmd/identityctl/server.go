package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/config"
	"github.com/scriptmarket/identity-in-go/pkg/db"
	"github.com/scriptmarket/identity-in-go/pkg/server"
	"github.com/scriptmarket/identity-in-go/pkg/server/endpoints"
	gormstore "github.com/scriptmarket/identity-in-go/pkg/server/store/gorm"
	"github.com/scriptmarket/identity-in-go/pkg/service"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the identity server",
	Long: `Run the identity server.

Requires the DATABASE_URL environment variable. Admin endpoints stay
disabled unless IDENTITY_ADMIN_TOKEN_SECRET is also set.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := migrateUp(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		gormDB, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		cfg := config.Get()

		watchConfig, _ := cmd.Flags().GetBool("watch-config")
		if watchConfig {
			stop := make(chan struct{})
			defer close(stop)
			go func() {
				err := config.Watch(stop, func(updated *config.Config) {
					log.Printf("Configuration reloaded from %s\n", updated.FilePath())
				})
				if err != nil {
					log.Printf("Config watch unavailable: %v\n", err)
				}
			}()
		}

		if len(config.AdminTokenSecret()) == 0 {
			log.Println("IDENTITY_ADMIN_TOKEN_SECRET not set; admin endpoints are disabled")
		}

		accounts := service.NewAccountService(gormstore.NewStore(gormDB), cfg)

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(accounts, cfg, gormDB, host, port)

		endpoints.RegisterAll(s)

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload configuration when the config file changes")
}
