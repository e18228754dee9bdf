package repository

import (
	"context"
	"fmt"
	"path"

	"github.com/jmoiron/sqlx"
	"github.com/templui/blogapi/internal/model"
)

// ImageReference ties a stored image URL to the author of the post using it.
type ImageReference struct {
	BlogID   string `db:"blog_id"`
	AuthorID string `db:"author_id"`
	ImageURL string `db:"image_url"`
}

func insertImages(ctx context.Context, tx *sqlx.Tx, images []model.BlogImage) error {
	if len(images) == 0 {
		return nil
	}

	query := tx.Rebind(`INSERT INTO blog_images (id, blog_id, image_url, image_order, caption, alt_text, is_featured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	for _, img := range images {
		_, err := tx.ExecContext(ctx, query,
			img.ID, img.BlogID, img.ImageURL, img.ImageOrder, img.Caption, img.AltText, img.IsFeatured, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert blog image %d: %w", img.ImageOrder, err)
		}
	}

	return nil
}

func (r *blogRepository) Images(ctx context.Context, blogID string) ([]model.BlogImage, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	images := []model.BlogImage{}
	query := r.db.Rebind(`SELECT id, blog_id, image_url, image_order, caption, alt_text, is_featured, created_at
		FROM blog_images WHERE blog_id = ? ORDER BY image_order ASC`)

	err := r.db.SelectContext(ctx, &images, query, blogID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// ReferencedImageURLs returns every image URL a post points at, from both the
// gallery rows and the featured_image column.
func (r *blogRepository) ReferencedImageURLs(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var urls []string
	query := `SELECT image_url FROM blog_images
		UNION
		SELECT featured_image FROM blogs WHERE featured_image IS NOT NULL AND featured_image <> ''`

	err := r.db.SelectContext(ctx, &urls, query)
	if err != nil {
		return nil, err
	}

	return urls, nil
}

func (r *blogRepository) ImageURLsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var urls []string
	query := r.db.Rebind(`SELECT bi.image_url FROM blog_images bi
		JOIN blogs b ON b.id = bi.blog_id
		WHERE b.author_id = ?
		UNION
		SELECT featured_image FROM blogs WHERE author_id = ? AND featured_image IS NOT NULL AND featured_image <> ''`)

	err := r.db.SelectContext(ctx, &urls, query, authorID, authorID)
	if err != nil {
		return nil, err
	}

	return urls, nil
}

// ImageReferences lists the posts whose images resolve to filename.
func (r *blogRepository) ImageReferences(ctx context.Context, filename string) ([]ImageReference, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pattern := "%" + likeEscaper.Replace(filename)
	var candidates []ImageReference
	query := r.db.Rebind(`SELECT bi.blog_id, b.author_id, bi.image_url FROM blog_images bi
		JOIN blogs b ON b.id = bi.blog_id
		WHERE bi.image_url LIKE ? ESCAPE '!'
		UNION
		SELECT id, author_id, featured_image FROM blogs WHERE featured_image LIKE ? ESCAPE '!'`)

	err := r.db.SelectContext(ctx, &candidates, query, pattern, pattern)
	if err != nil {
		return nil, err
	}

	refs := candidates[:0]
	for _, ref := range candidates {
		if path.Base(ref.ImageURL) == filename {
			refs = append(refs, ref)
		}
	}

	return refs, nil
}
