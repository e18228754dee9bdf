package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/sanitize"
	"github.com/templui/blogapi/internal/storage"
	"github.com/templui/blogapi/internal/validation"
)

const (
	MaxBlogImages   = 10
	MaxAvatarImages = 1

	msgNoFiles      = "Không có file được upload"
	msgFileNotFound = "File không tồn tại"
)

// uploadPurpose pairs a storage directory with its limits.
type uploadPurpose struct {
	dir         string
	maxFiles    int
	constraints validation.FileConstraints
}

var uploadPurposes = map[string]uploadPurpose{
	model.PurposeBlogs:   {dir: model.PurposeBlogs, maxFiles: MaxBlogImages, constraints: validation.BlogImageConstraints},
	model.PurposeAvatars: {dir: model.PurposeAvatars, maxFiles: MaxAvatarImages, constraints: validation.AvatarConstraints},
}

// MaxUploadBytes bounds a multipart request body for the purpose.
func MaxUploadBytes(purpose string) int64 {
	p := uploadPurposes[purpose]
	return int64(p.maxFiles)*p.constraints.MaxSize + 1<<20
}

type UploadService struct {
	storage  storage.Storage
	blogRepo repository.BlogRepository
}

func NewUploadService(storage storage.Storage, blogRepo repository.BlogRepository) *UploadService {
	return &UploadService{
		storage:  storage,
		blogRepo: blogRepo,
	}
}

// StoreImages validates every file before writing any of them. If a write
// fails, files already written by this call are removed again.
func (s *UploadService) StoreImages(ctx context.Context, purpose string, headers []*multipart.FileHeader) ([]model.StoredFile, error) {
	p, ok := uploadPurposes[purpose]
	if !ok {
		return nil, fmt.Errorf("unknown upload purpose %q", purpose)
	}

	if len(headers) == 0 {
		return nil, apperr.Validation(msgNoFiles)
	}
	if len(headers) > p.maxFiles {
		return nil, apperr.Validation(fmt.Sprintf("Tối đa %d file mỗi lần upload", p.maxFiles))
	}

	files := make([]model.StoredFile, 0, len(headers))
	for _, header := range headers {
		originalName := sanitize.Filename(filepath.Base(header.Filename))

		mimeType, err := validation.ValidateFile(header, p.constraints)
		if err != nil {
			return nil, apperr.Validation(fmt.Sprintf("%s: %s", originalName, err.Error()))
		}

		filename := uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
		files = append(files, model.StoredFile{
			Filename:     filename,
			OriginalName: originalName,
			Size:         header.Size,
			MimeType:     mimeType,
			Purpose:      p.dir,
		})
	}

	for i := range files {
		err := s.save(ctx, &files[i], headers[i])
		if err != nil {
			s.discard(ctx, files[:i])
			return nil, apperr.Storage(err)
		}
		files[i].URL = s.storage.URL(files[i].StoragePath())
	}

	slog.Info("images uploaded", "purpose", purpose, "count", len(files))
	return files, nil
}

func (s *UploadService) save(ctx context.Context, file *model.StoredFile, header *multipart.FileHeader) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	err = s.storage.Save(ctx, file.StoragePath(), src)
	if err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// discard removes files written earlier in a batch that did not complete.
func (s *UploadService) discard(ctx context.Context, files []model.StoredFile) {
	for _, f := range files {
		err := s.storage.Delete(ctx, f.StoragePath())
		if err != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", err, "path", f.StoragePath())
		}
	}
}

// DeleteImage removes a stored post image by its file name. Images used
// by another author's post are reported as not found.
func (s *UploadService) DeleteImage(ctx context.Context, requesterID, filename string) error {
	if !sanitize.IsSafeName(filename) {
		return apperr.Validation("Tên file không hợp lệ")
	}

	refs, err := s.blogRepo.ImageReferences(ctx, filename)
	if err != nil {
		return apperr.Storage(fmt.Errorf("failed to check image references: %w", err))
	}
	for _, ref := range refs {
		if ref.AuthorID != requesterID {
			return apperr.Forbidden(msgFileNotFound)
		}
	}

	err = s.storage.Delete(ctx, path.Join(model.PurposeBlogs, filename))
	if errors.Is(err, storage.ErrNotExist) {
		return apperr.NotFound(msgFileNotFound)
	}
	if err != nil {
		return apperr.Storage(err)
	}

	slog.Info("image deleted", "filename", filename, "user_id", requesterID)
	return nil
}

// DeleteByURL removes the stored file behind a public URL, best effort.
// URLs that do not point into purpose are ignored.
func (s *UploadService) DeleteByURL(ctx context.Context, purpose, url string) {
	name := filenameFromURL(url)
	if name == "" || !strings.Contains(url, "/"+purpose+"/") {
		return
	}

	err := s.storage.Delete(ctx, path.Join(purpose, name))
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		slog.Warn("failed to delete file from storage", "url", url, "error", err)
	}
}

// DeleteUnshared removes a post image left behind by ownerID unless another
// author's post references it. Failures are logged; the cleanup job
// catches anything left over.
func (s *UploadService) DeleteUnshared(ctx context.Context, ownerID, url string) {
	name := filenameFromURL(url)
	if name == "" || !strings.Contains(url, "/"+model.PurposeBlogs+"/") {
		return
	}

	refs, err := s.blogRepo.ImageReferences(ctx, name)
	if err != nil {
		slog.Warn("failed to check image references", "url", url, "error", err)
		return
	}
	for _, ref := range refs {
		if ref.AuthorID != ownerID {
			slog.Debug("image still referenced, keeping file", "url", url, "blog_id", ref.BlogID)
			return
		}
	}

	s.DeleteByURL(ctx, model.PurposeBlogs, url)
}

// filenameFromURL extracts the trailing path segment of a stored image URL.
func filenameFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i != -1 {
		url = url[:i]
	}
	name := path.Base(url)
	if !sanitize.IsSafeName(name) {
		return ""
	}
	return name
}
