package sqlite

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/martijn/clientbook/internal/infrastructure/sqlite/migrations"
)

// ApplyMigrations brings the schema up to date using the migrations embedded
// in the binary. Running it against a current schema is a no-op.
func (db *DB) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(db.DB.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	// Closing the instance would close db, so it is left for the GC.
	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
