package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/campusid/auth/internal/auth/store/drivers/postgres/migrations"
)

// ApplyMigrations applies any pending migrations from the embedded schema.
func (s *Store) ApplyMigrations() error {
	const op = "postgres.ApplyMigrations"

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	// The migrate driver opens its own connection to the same server.
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(s.url))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	return nil
}

// migrateURL rewrites a libpq style URL to the scheme the pgx/v5 migrate
// driver registers.
func migrateURL(url string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return url
}
