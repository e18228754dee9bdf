package model

type Category struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	IsActive    bool    `db:"is_active" json:"is_active"`
	BlogCount   int     `db:"blog_count" json:"blog_count"`
}
