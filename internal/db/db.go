package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Options tunes the connection pool. Zero values fall back to defaults.
type Options struct {
	MaxOpenConns int
}

func init() {
	// modernc registers as "sqlite", which sqlx does not know about
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func Init(driver, connection string, opts Options) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" {
		path := connection
		if i := strings.Index(path, "?"); i != -1 {
			path = path[:i]
		}
		path = strings.TrimPrefix(path, "file:")
		if path != ":memory:" && path != "" {
			err := os.MkdirAll(filepath.Dir(path), 0755)
			if err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(maxOpen, 5))
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver, "max_open_conns", maxOpen)

	return db, nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
