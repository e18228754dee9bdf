package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/validation"
)

const (
	msgUserNotFound           = "Người dùng không tồn tại"
	msgPasswordFieldsRequired = "Mật khẩu hiện tại và mật khẩu mới là bắt buộc"
	msgInvalidCurrentPassword = "Mật khẩu hiện tại không đúng"
	msgNameRequired           = "Tên không được để trống"
	msgConfirmPassword        = "Vui lòng nhập mật khẩu để xác nhận"
	msgWrongPassword          = "Mật khẩu không chính xác"

	maxWebsiteLength = 255
	maxProfileField  = 500
)

type UserService struct {
	userRepository repository.UserRepository
	blogRepository repository.BlogRepository
	passwords      *PasswordHasher
	uploads        *UploadService
	emailService   *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	blogRepository repository.BlogRepository,
	passwords *PasswordHasher,
	uploads *UploadService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		blogRepository: blogRepository,
		passwords:      passwords,
		uploads:        uploads,
		emailService:   emailService,
	}
}

func (s *UserService) byID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get user: %w", err))
	}
	return user, nil
}

// Me returns the user together with their published post count.
func (s *UserService) Me(ctx context.Context, id string) (*model.Profile, error) {
	user, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.blogRepository.CountByAuthor(ctx, id, model.BlogStatusPublished)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to count blogs: %w", err))
	}

	return &model.Profile{User: user, BlogCount: count}, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperr.Validation(msgPasswordFieldsRequired)
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.byID(ctx, id)
	if err != nil {
		return err
	}

	if s.passwords.Compare(currentPassword, user.PasswordHash) != nil {
		return apperr.Validation(msgInvalidCurrentPassword)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.userRepository.UpdatePassword(ctx, id, hash, time.Now().UTC())
	if err != nil {
		return apperr.Storage(fmt.Errorf("failed to update password: %w", err))
	}

	slog.Info("password changed", "user_id", id)

	err = s.emailService.SendPasswordChangedEmail(ctx, user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send password changed email", "user_id", id, "error", err)
	}

	return nil
}

type ProfileInput struct {
	Name     string
	Bio      string
	Phone    string
	Location string
	Website  string
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(msgNameRequired)
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	bio := optional(in.Bio)
	phone := optional(in.Phone)
	location := optional(in.Location)
	website := optional(in.Website)

	for _, f := range []struct {
		field string
		value *string
		max   int
	}{
		{"Bio", bio, maxProfileField},
		{"Số điện thoại", phone, 20},
		{"Địa chỉ", location, maxProfileField},
		{"Website", website, maxWebsiteLength},
	} {
		if f.value == nil {
			continue
		}
		if err := validation.ValidateMaxLength(f.field, *f.value, f.max); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}

	user, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Bio = bio
	user.Phone = phone
	user.Location = location
	user.Website = website
	user.UpdatedAt = time.Now().UTC()

	err = s.userRepository.UpdateProfile(ctx, user)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to update profile: %w", err))
	}

	slog.Info("profile updated", "user_id", id)
	return user, nil
}

// optional trims s and maps the empty string to NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UploadAvatar stores a new avatar and removes the previous one, best effort.
func (s *UserService) UploadAvatar(ctx context.Context, id string, header *multipart.FileHeader) (*model.User, error) {
	if header == nil {
		return nil, apperr.Validation(msgNoFiles)
	}

	user, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := s.uploads.StoreImages(ctx, model.PurposeAvatars, []*multipart.FileHeader{header})
	if err != nil {
		return nil, err
	}
	avatarURL := files[0].URL

	now := time.Now().UTC()
	err = s.userRepository.UpdateAvatar(ctx, id, avatarURL, now)
	if err != nil {
		s.uploads.DeleteByURL(ctx, model.PurposeAvatars, avatarURL)
		return nil, apperr.Storage(fmt.Errorf("failed to update avatar: %w", err))
	}

	if user.Avatar != nil {
		s.uploads.DeleteByURL(ctx, model.PurposeAvatars, *user.Avatar)
	}

	user.Avatar = &avatarURL
	user.UpdatedAt = now

	slog.Info("avatar uploaded", "user_id", id)
	return user, nil
}

// DeleteAccount removes the user after confirming their password. Posts,
// images, comments and likes go with it via ON DELETE CASCADE. Stored files
// are removed only once the row is gone, best effort, and files another
// author's post still uses are kept.
func (s *UserService) DeleteAccount(ctx context.Context, id, password string) error {
	if password == "" {
		return apperr.Validation(msgConfirmPassword)
	}

	user, err := s.byID(ctx, id)
	if err != nil {
		return err
	}

	if s.passwords.Compare(password, user.PasswordHash) != nil {
		return apperr.Validation(msgWrongPassword)
	}

	urls, err := s.blogRepository.ImageURLsByAuthor(ctx, id)
	if err != nil {
		slog.Warn("failed to list blog images for deletion", "user_id", id, "error", err)
	}

	err = s.userRepository.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return apperr.Storage(fmt.Errorf("failed to delete user: %w", err))
	}

	if user.Avatar != nil {
		s.uploads.DeleteByURL(ctx, model.PurposeAvatars, *user.Avatar)
	}
	for _, url := range urls {
		s.uploads.DeleteUnshared(ctx, id, url)
	}

	slog.Info("account deleted", "user_id", id)

	err = s.emailService.SendAccountDeletedEmail(ctx, user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send account deleted email", "user_id", id, "error", err)
	}

	return nil
}
