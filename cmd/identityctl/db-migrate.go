package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/db"
)

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply all pending schema migrations.

Reads the target database from DATABASE_URL. Migration files live in
db/migrations and are compiled into the binary when built with the
embed_migrations tag.

Example:
  identityctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := migrateUp(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back schema migrations",
	Long: `Roll back the given number of schema migrations (default 1).

Example:
  identityctl db down
  identityctl db down 2`,
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Println("error: steps must be a positive integer")
				os.Exit(1)
			}
			steps = n
		}

		if err := migrateDown(steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied migration version",
	Run: func(cmd *cobra.Command, args []string) {
		if err := migrateStatus(); err != nil {
			fmt.Println("Failed to read migration status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// openMigrator resolves DATABASE_URL and builds a migrate instance
// from whichever migration source this binary was built with.
func openMigrator() (*migrate.Migrate, error) {
	dbURL := db.URL()
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return newMigrator(dbURL)
}

func migrateUp() error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			fmt.Println("Schema is up to date")
			return nil
		}
		return err
	}

	version, _, _ := m.Version()
	fmt.Printf("Schema migrated to version %d\n", version)
	return nil
}

func migrateDown(steps int) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)\n", steps)
	if err := m.Steps(-steps); err != nil {
		return err
	}

	version, _, err := m.Version()
	if err == migrate.ErrNilVersion {
		fmt.Println("Schema rolled back to empty")
		return nil
	}
	fmt.Printf("Schema now at version %d\n", version)
	return nil
}

func migrateStatus() error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		fmt.Println("No migrations applied")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Schema version: %d\n", version)
	if dirty {
		fmt.Println("Warning: schema is dirty; the last migration did not finish")
	}
	return nil
}
