package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/model"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
)

const commentSelect = `SELECT cm.id, cm.blog_id, cm.user_id, cm.content, cm.created_at,
	u.name AS author_name, u.avatar AS author_avatar
FROM comments cm
JOIN users u ON u.id = cm.user_id`

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ByID(ctx context.Context, id string) (*model.Comment, error)
	ListByBlog(ctx context.Context, blogID string) ([]model.Comment, error)
}

type commentRepository struct {
	base
}

func NewCommentRepository(db *sqlx.DB, timeout time.Duration) CommentRepository {
	return &commentRepository{base{db: db, timeout: timeout}}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.Rebind(`INSERT INTO comments (id, blog_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, comment.ID, comment.BlogID, comment.UserID, comment.Content, comment.CreatedAt)
	return err
}

func (r *commentRepository) ByID(ctx context.Context, id string) (*model.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	comment := &model.Comment{}
	err := r.db.GetContext(ctx, comment, r.db.Rebind(commentSelect+` WHERE cm.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (r *commentRepository) ListByBlog(ctx context.Context, blogID string) ([]model.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	comments := []model.Comment{}
	query := r.db.Rebind(commentSelect + ` WHERE cm.blog_id = ? ORDER BY cm.created_at ASC, cm.id ASC`)
	err := r.db.SelectContext(ctx, &comments, query, blogID)
	if err != nil {
		return nil, err
	}

	return comments, nil
}
