package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/model"
)

var (
	ErrBlogNotFound = errors.New("blog not found")
)

const blogColumns = `b.id, b.title, b.slug, b.content, b.excerpt, b.author_id, b.category_id, b.featured_image,
	b.images_count, b.status, b.view_count, b.created_at, b.updated_at`

const blogSummarySelect = `SELECT ` + blogColumns + `,
	u.name AS author_name, u.avatar AS author_avatar,
	c.name AS category_name, c.slug AS category_slug,
	(SELECT COUNT(*) FROM blog_likes l WHERE l.blog_id = b.id) AS likes_count,
	(SELECT COUNT(*) FROM comments cm WHERE cm.blog_id = b.id) AS comments_count
FROM blogs b
JOIN users u ON u.id = b.author_id
LEFT JOIN categories c ON c.id = b.category_id`

// BlogFilter narrows List. Zero values mean "no filter".
type BlogFilter struct {
	Status       model.BlogStatus
	AuthorID     string
	Search       string
	CategorySlug string
	Limit        int
	Offset       int
}

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog, images []model.BlogImage) error
	Update(ctx context.Context, blog *model.Blog) error
	UpdateWithImages(ctx context.Context, blog *model.Blog, images []model.BlogImage) error
	ByID(ctx context.Context, id string) (*model.Blog, error)
	SummaryByID(ctx context.Context, id string) (*model.BlogSummary, error)
	List(ctx context.Context, filter BlogFilter) ([]model.BlogSummary, int, error)
	CountByAuthor(ctx context.Context, authorID string, status model.BlogStatus) (int, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	Images(ctx context.Context, blogID string) ([]model.BlogImage, error)
	ReferencedImageURLs(ctx context.Context) ([]string, error)
	ImageURLsByAuthor(ctx context.Context, authorID string) ([]string, error)
	ImageReferences(ctx context.Context, filename string) ([]ImageReference, error)
}

type blogRepository struct {
	base
}

func NewBlogRepository(db *sqlx.DB, timeout time.Duration) BlogRepository {
	return &blogRepository{base{db: db, timeout: timeout}}
}

func (r *blogRepository) Create(ctx context.Context, blog *model.Blog, images []model.BlogImage) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	applyImageSummary(blog, images)

	query := tx.Rebind(`INSERT INTO blogs (id, title, slug, content, excerpt, author_id, category_id, featured_image,
		images_count, status, view_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, query,
		blog.ID, blog.Title, blog.Slug, blog.Content, blog.Excerpt, blog.AuthorID, blog.CategoryID,
		blog.FeaturedImage, blog.ImagesCount, blog.Status, blog.ViewCount, blog.CreatedAt, blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}

	err = insertImages(ctx, tx, images)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *blogRepository) Update(ctx context.Context, blog *model.Blog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return updateBlog(ctx, r.db, blog, false)
}

// UpdateWithImages replaces the image set and the derived counters in one
// transaction.
func (r *blogRepository) UpdateWithImages(ctx context.Context, blog *model.Blog, images []model.BlogImage) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	applyImageSummary(blog, images)

	err = updateBlog(ctx, tx, blog, true)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM blog_images WHERE blog_id = ?`), blog.ID)
	if err != nil {
		return fmt.Errorf("delete blog images: %w", err)
	}

	err = insertImages(ctx, tx, images)
	if err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

func updateBlog(ctx context.Context, db execer, blog *model.Blog, withImages bool) error {
	query := `UPDATE blogs SET title = ?, slug = ?, content = ?, excerpt = ?, category_id = ?, featured_image = ?,
		status = ?, updated_at = ?`
	args := []any{blog.Title, blog.Slug, blog.Content, blog.Excerpt, blog.CategoryID, blog.FeaturedImage, blog.Status, blog.UpdatedAt}
	if withImages {
		query += `, images_count = ?`
		args = append(args, blog.ImagesCount)
	}
	query += ` WHERE id = ?`
	args = append(args, blog.ID)

	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBlogNotFound
	}

	return nil
}

// applyImageSummary keeps images_count and featured_image in step with the
// image rows that are about to be written. Without images the post keeps the
// featured_image it was given.
func applyImageSummary(blog *model.Blog, images []model.BlogImage) {
	blog.ImagesCount = len(images)
	for _, img := range images {
		if img.IsFeatured {
			url := img.ImageURL
			blog.FeaturedImage = &url
			return
		}
	}
}

func (r *blogRepository) ByID(ctx context.Context, id string) (*model.Blog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	blog := &model.Blog{}
	query := r.db.Rebind(`SELECT ` + blogColumns + ` FROM blogs b WHERE b.id = ?`)

	err := r.db.GetContext(ctx, blog, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, err
	}

	return blog, nil
}

func (r *blogRepository) SummaryByID(ctx context.Context, id string) (*model.BlogSummary, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	summary := &model.BlogSummary{}
	query := r.db.Rebind(blogSummarySelect + ` WHERE b.id = ?`)

	err := r.db.GetContext(ctx, summary, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter) ([]model.BlogSummary, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, `b.status = ?`)
		args = append(args, filter.Status)
	}
	if filter.AuthorID != "" {
		where = append(where, `b.author_id = ?`)
		args = append(args, filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		where = append(where, `(LOWER(b.title) LIKE ? ESCAPE '!' OR LOWER(b.content) LIKE ? ESCAPE '!')`)
		args = append(args, pattern, pattern)
	}
	if filter.CategorySlug != "" {
		where = append(where, `c.slug = ?`)
		args = append(args, filter.CategorySlug)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM blogs b LEFT JOIN categories c ON c.id = b.category_id` + whereClause)
	err := r.db.GetContext(ctx, &total, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	query := blogSummarySelect + whereClause + ` ORDER BY b.created_at DESC, b.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	blogs := []model.BlogSummary{}
	err = r.db.SelectContext(ctx, &blogs, r.db.Rebind(query), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}

	return blogs, total, nil
}

func (r *blogRepository) CountByAuthor(ctx context.Context, authorID string, status model.BlogStatus) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM blogs WHERE author_id = ? AND status = ?`)
	err := r.db.GetContext(ctx, &count, query, authorID, status)
	return count, err
}

// IncrementViews is a single atomic statement, safe under concurrent readers.
func (r *blogRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE blogs SET view_count = view_count + 1 WHERE id = ?`), id)
	return err
}

// Delete removes the post; images, comments and likes go with it via
// ON DELETE CASCADE.
func (r *blogRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM blogs WHERE id = ?`), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBlogNotFound
	}

	return nil
}
