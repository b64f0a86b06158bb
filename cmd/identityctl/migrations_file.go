//go:build !embed_migrations

package main

import (
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// newMigrator reads migrations from the working tree. Override the
// location with IDENTITY_MIGRATIONS_DIR for out-of-tree runs.
func newMigrator(dbURL string) (*migrate.Migrate, error) {
	dir := os.Getenv("IDENTITY_MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/migrations"
	}
	return migrate.New("file://"+dir, dbURL)
}
