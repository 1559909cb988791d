package sqlite

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/campusid/auth/internal/auth/store/drivers/sqlite/migrations"
)

// ApplyMigrations brings the schema up to the newest embedded migration. It
// is a no-op on an up to date database.
func (s *Store) ApplyMigrations() error {
	const op = "sqlite.ApplyMigrations"

	dbDriver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("%s: database driver: %w", op, err)
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	return nil
}
