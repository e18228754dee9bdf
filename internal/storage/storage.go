package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/blogapi/internal/config"
)

var (
	ErrNotExist    = errors.New("file does not exist")
	ErrInvalidPath = errors.New("invalid storage path")
)

// Storage defines the interface for file storage operations.
// Paths are slash separated and relative to the storage root, e.g. "blogs/<name>".
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, file io.Reader) error

	// Delete removes a file at the given path, returning ErrNotExist if it is absent
	Delete(ctx context.Context, path string) error

	// List returns the names of the files directly under dir
	List(ctx context.Context, dir string) ([]string, error)

	// URL returns the public URL for accessing the file
	URL(path string) string
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(ctx context.Context, c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		slog.Info("initializing local storage", "dir", c.UploadDir)
		return NewLocalStorage(c.UploadDir, "/uploads")
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
