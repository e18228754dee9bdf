package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       *string   `db:"avatar" json:"avatar"`
	Bio          *string   `db:"bio" json:"bio"`
	Phone        *string   `db:"phone" json:"phone"`
	Location     *string   `db:"location" json:"location"`
	Website      *string   `db:"website" json:"website"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is the minimal view of an authenticated user that travels in the
// request context. It has no password hash by construction.
type Identity struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
	Role   string  `json:"role"`
}

func (u *User) Identity() *Identity {
	return &Identity{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Bio:    u.Bio,
		Role:   u.Role,
	}
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Profile is a user plus their published post count, as returned by /me.
type Profile struct {
	*User
	BlogCount int `json:"blog_count"`
}
