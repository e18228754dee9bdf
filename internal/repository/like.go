package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type LikeRepository interface {
	Toggle(ctx context.Context, blogID, userID string) (bool, error)
	Exists(ctx context.Context, blogID, userID string) (bool, error)
	Count(ctx context.Context, blogID string) (int, error)
}

type likeRepository struct {
	base
}

func NewLikeRepository(db *sqlx.DB, timeout time.Duration) LikeRepository {
	return &likeRepository{base{db: db, timeout: timeout}}
}

// Toggle flips set membership of (blog, user) without a read-modify-write:
// a DELETE that removes a row means "unliked", otherwise the row is inserted.
// Losing an insert race against the same pair still leaves the post liked.
func (r *likeRepository) Toggle(ctx context.Context, blogID, userID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM blog_likes WHERE blog_id = ? AND user_id = ?`), blogID, userID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO blog_likes (blog_id, user_id, created_at) VALUES (?, ?, ?)`),
		blogID, userID, time.Now().UTC(),
	)
	if err != nil && !isUniqueViolation(err) {
		return false, err
	}

	return true, nil
}

func (r *likeRepository) Exists(ctx context.Context, blogID, userID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM blog_likes WHERE blog_id = ? AND user_id = ?`)
	err := r.db.GetContext(ctx, &count, query, blogID, userID)
	return count > 0, err
}

func (r *likeRepository) Count(ctx context.Context, blogID string) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM blog_likes WHERE blog_id = ?`), blogID)
	return count, err
}
