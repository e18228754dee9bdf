package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserInactive means the token is valid but its user is gone or disabled.
	ErrUserInactive = errors.New("user not found or inactive")
)

const (
	msgInvalidCredentials = "Email hoặc mật khẩu không đúng"
	msgRegisterRequired   = "Tên, email và mật khẩu là bắt buộc"
	msgEmailTaken         = "Email đã được sử dụng"
	msgAccountDisabled    = "Tài khoản đã bị vô hiệu hóa"
)

type AuthService struct {
	userRepository repository.UserRepository
	tokens         *TokenService
	passwords      *PasswordHasher
	emailService   *EmailService
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokens *TokenService,
	passwords *PasswordHasher,
	emailService *EmailService,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		tokens:         tokens,
		passwords:      passwords,
		emailService:   emailService,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := validation.NormalizeEmail(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation(msgRegisterRequired)
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, apperr.Conflict(msgEmailTaken)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to create user: %w", err))
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)

	err = s.emailService.SendWelcomeEmail(ctx, user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send welcome email", "user_id", user.ID, "error", err)
	}

	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email và mật khẩu là bắt buộc")
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get user: %w", err))
	}

	err = s.passwords.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperr.Unauthenticated(msgAccountDisabled)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return s.session(user)
}

func (s *AuthService) session(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate verifies a bearer token and loads the live user behind it.
// Token errors are returned as-is (ErrTokenExpired, ErrTokenMalformed,
// ErrTokenInvalidSignature); a missing or disabled user is ErrUserInactive.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserInactive
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user.Identity(), nil
}

// PasswordHasher wraps bcrypt with a configurable cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

func (h *PasswordHasher) Compare(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
