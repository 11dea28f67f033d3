package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// RunMigrations applies all pending schema migrations from sourceURL (for
// example "file://./migrations") against the database at dsn. An already
// up-to-date schema is not an error.
func RunMigrations(dsn, sourceURL string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}

	upErr := m.Up()
	srcErr, dbErr := m.Close()

	switch {
	case upErr != nil && !errors.Is(upErr, migrate.ErrNoChange):
		return fmt.Errorf("apply migrations: %w", upErr)
	case srcErr != nil:
		return fmt.Errorf("close migration source: %w", srcErr)
	case dbErr != nil:
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}
