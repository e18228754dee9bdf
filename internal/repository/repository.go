package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// base bounds each repository call, connection wait and statement together,
// by one timeout. Running out of time fails with context.DeadlineExceeded.
type base struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

// isUniqueViolation works for SQLite, PostgreSQL and MySQL
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a lowercase LIKE pattern for use with ESCAPE '!'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// rollback is deferred after BeginTxx; it is a no-op once the tx committed.
func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
