package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/model"
)

type CategoryRepository interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type categoryRepository struct {
	base
}

func NewCategoryRepository(db *sqlx.DB, timeout time.Duration) CategoryRepository {
	return &categoryRepository{base{db: db, timeout: timeout}}
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	categories := []model.Category{}
	query := r.db.Rebind(`SELECT c.id, c.name, c.slug, c.description, c.is_active,
		(SELECT COUNT(*) FROM blogs b WHERE b.category_id = c.id AND b.status = ?) AS blog_count
		FROM categories c
		WHERE c.is_active = ?
		ORDER BY c.name ASC`)

	err := r.db.SelectContext(ctx, &categories, query, model.BlogStatusPublished, true)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM categories WHERE id = ? AND is_active = ?`), id, true)
	return count > 0, err
}
