package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Each driver has its own schema variant under migrations/.
var dialects = map[string]struct {
	dialect goose.Dialect
	dir     string
}{
	"sqlite": {goose.DialectSQLite3, "migrations/sqlite"},
	"pgx":    {goose.DialectPostgres, "migrations/postgres"},
	"mysql":  {goose.DialectMySQL, "migrations/mysql"},
}

func newProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dir, err := fs.Sub(migrationsFS, d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations directory: %w", err)
	}

	provider, err := goose.NewProvider(d.dialect, db, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully", "applied", len(results))
	return nil
}

func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	provider, err := newProvider(db, driver)
	if err != nil {
		return err
	}

	result, err := provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back migration", "version", result.Source.Version)
	return nil
}

func MigrationStatus(ctx context.Context, db *sql.DB, driver string) ([]*goose.MigrationStatus, error) {
	provider, err := newProvider(db, driver)
	if err != nil {
		return nil, err
	}

	return provider.Status(ctx)
}
