package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/storage"
	"github.com/templui/blogapi/internal/validation"
)

type CleanupReport struct {
	Scanned    int `json:"scanned"`
	Referenced int `json:"referenced"`
	Deleted    int `json:"deleted"`
	Failed     int `json:"failed"`
}

// CleanupService removes post images that no post refers to anymore.
type CleanupService struct {
	storage  storage.Storage
	blogRepo repository.BlogRepository
}

func NewCleanupService(storage storage.Storage, blogRepo repository.BlogRepository) *CleanupService {
	return &CleanupService{
		storage:  storage,
		blogRepo: blogRepo,
	}
}

// Run deletes every stored post image that is neither a gallery image nor a
// featured image of any post. A failed delete is logged and counted and the
// run goes on with the next file.
func (s *CleanupService) Run(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	names, err := s.storage.List(ctx, model.PurposeBlogs)
	if err != nil {
		return report, apperr.Storage(fmt.Errorf("failed to list stored images: %w", err))
	}

	urls, err := s.blogRepo.ReferencedImageURLs(ctx)
	if err != nil {
		return report, apperr.Storage(fmt.Errorf("failed to load referenced images: %w", err))
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if name := filenameFromURL(url); name != "" {
			referenced[name] = struct{}{}
		}
	}

	for _, name := range names {
		if strings.HasPrefix(name, ".") || !validation.IsImageExtension(name) {
			continue
		}
		report.Scanned++

		if _, ok := referenced[name]; ok {
			report.Referenced++
			continue
		}

		err := s.storage.Delete(ctx, path.Join(model.PurposeBlogs, name))
		if err != nil {
			report.Failed++
			slog.Warn("failed to delete orphaned image", "filename", name, "error", err)
			continue
		}
		report.Deleted++
		slog.Debug("orphaned image deleted", "filename", name)
	}

	slog.Info("image cleanup finished",
		"scanned", report.Scanned,
		"referenced", report.Referenced,
		"deleted", report.Deleted,
		"failed", report.Failed,
	)
	return report, nil
}
