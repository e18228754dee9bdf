package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files on disk under a root directory, one
// subdirectory per purpose.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	err = os.MkdirAll(abs, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &LocalStorage{
		root:      abs,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root is the directory served under the URL prefix.
func (s *LocalStorage) Root() string {
	return s.root
}

// resolve maps a storage path to a file system path, refusing anything that
// would land outside the root.
func (s *LocalStorage) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidPath
	}
	return full, nil
}

func (s *LocalStorage) Save(ctx context.Context, p string, file io.Reader) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(full), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(f, file)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *LocalStorage) Delete(ctx context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalStorage) List(ctx context.Context, dir string) ([]string, error) {
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func (s *LocalStorage) URL(p string) string {
	return s.urlPrefix + "/" + strings.TrimPrefix(p, "/")
}
