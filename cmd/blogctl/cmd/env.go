package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/config"
	"github.com/templui/blogapi/internal/db"
	"github.com/templui/blogapi/internal/logger"
)

// openDB loads configuration, sets up logging and connects to the database.
// The caller closes the returned handle.
func openDB() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		Environment: cfg.AppEnv,
		SentryDSN:   cfg.SentryDSN,
	})

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection, db.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, database, nil
}
