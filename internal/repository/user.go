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
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, avatar, bio, phone, location, website, role, is_active, created_at, updated_at`

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	UpdateAvatar(ctx context.Context, id, avatarURL string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	base
}

func NewUserRepository(db *sqlx.DB, timeout time.Duration) UserRepository {
	return &userRepository{base{db: db, timeout: timeout}}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Avatar, user.Bio, user.Phone, user.Location, user.Website,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *userRepository) one(ctx context.Context, query string, args ...any) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user := &model.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.exec(ctx,
		`UPDATE users SET name = ?, bio = ?, phone = ?, location = ?, website = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Bio, user.Phone, user.Location, user.Website, user.UpdatedAt, user.ID,
	)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, at, id)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatarURL string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`, avatarURL, at, id)
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, at, id)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
}

// exec runs a single-row write and reports ErrUserNotFound when nothing matched.
func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
