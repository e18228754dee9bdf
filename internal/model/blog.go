package model

import (
	"time"
)

type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
	BlogStatusPrivate   BlogStatus = "private"
)

func (s BlogStatus) Valid() bool {
	switch s {
	case BlogStatusDraft, BlogStatusPublished, BlogStatusPrivate:
		return true
	}
	return false
}

// DefaultCategoryID is used when a post is created without a category.
const DefaultCategoryID int64 = 1

type Blog struct {
	ID            string     `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Content       string     `db:"content" json:"content"`
	Excerpt       *string    `db:"excerpt" json:"excerpt"`
	AuthorID      string     `db:"author_id" json:"author_id"`
	CategoryID    *int64     `db:"category_id" json:"category_id"`
	FeaturedImage *string    `db:"featured_image" json:"featured_image"`
	ImagesCount   int        `db:"images_count" json:"images_count"`
	Status        BlogStatus `db:"status" json:"status"`
	ViewCount     int        `db:"view_count" json:"view_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// VisibleTo reports whether viewerID may read the post.
func (b *Blog) VisibleTo(viewerID string) bool {
	return b.Status == BlogStatusPublished || (viewerID != "" && b.AuthorID == viewerID)
}

// BlogSummary is a post joined with its author, category and counters.
type BlogSummary struct {
	Blog
	AuthorName    string  `db:"author_name" json:"author_name"`
	AuthorAvatar  *string `db:"author_avatar" json:"author_avatar"`
	CategoryName  *string `db:"category_name" json:"category_name"`
	CategorySlug  *string `db:"category_slug" json:"category_slug"`
	LikesCount    int     `db:"likes_count" json:"likes_count"`
	CommentsCount int     `db:"comments_count" json:"comments_count"`
}

type BlogDetail struct {
	BlogSummary
	ContentHTML string      `json:"content_html"`
	Images      []BlogImage `json:"images"`
	Liked       bool        `json:"liked"`
}

type BlogImage struct {
	ID         string    `db:"id" json:"id"`
	BlogID     string    `db:"blog_id" json:"blog_id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	ImageOrder int       `db:"image_order" json:"image_order"`
	Caption    *string   `db:"caption" json:"caption"`
	AltText    string    `db:"alt_text" json:"alt_text"`
	IsFeatured bool      `db:"is_featured" json:"is_featured"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}
