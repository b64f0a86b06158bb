//go:build embed_migrations

package main

import (
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/scriptmarket/identity-in-go/db"
)

// newMigrator reads migrations from the copy embedded at build time,
// so the binary runs without the source tree on disk.
func newMigrator(dbURL string) (*migrate.Migrate, error) {
	migrationsFS, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("embedded migrations unavailable: %w", err)
	}

	src, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("iofs source: %w", err)
	}

	return migrate.NewWithSourceInstance("iofs", src, dbURL)
}
