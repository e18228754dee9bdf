package model

import "time"

type Comment struct {
	ID        string    `db:"id" json:"id"`
	BlogID    string    `db:"blog_id" json:"blog_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	AuthorName   string  `db:"author_name" json:"author_name"`
	AuthorAvatar *string `db:"author_avatar" json:"author_avatar"`
}
