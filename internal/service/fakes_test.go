package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/storage"
)

// fakeBlogRepository serves the image reference queries from memory. Other
// methods are not used by the services under test and panic if called.
type fakeBlogRepository struct {
	repository.BlogRepository

	urls       []string
	authorURLs []string
	refs       map[string][]repository.ImageReference
	err        error
}

func (f *fakeBlogRepository) ImageURLsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	return f.authorURLs, f.err
}

func (f *fakeBlogRepository) ReferencedImageURLs(ctx context.Context) ([]string, error) {
	return f.urls, f.err
}

func (f *fakeBlogRepository) ImageReferences(ctx context.Context, filename string) ([]repository.ImageReference, error) {
	return f.refs[filename], f.err
}

// fakeUserRepository holds a single user; Delete fails with deleteErr.
type fakeUserRepository struct {
	repository.UserRepository

	user      *model.User
	deleteErr error
	deleted   bool
}

func (f *fakeUserRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	if f.user == nil || f.user.ID != id || f.deleted {
		return nil, repository.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepository) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	return nil
}

// flakyStorage fails Delete for the listed paths and Save after n writes.
type flakyStorage struct {
	storage.Storage

	mu          sync.Mutex
	failDelete  map[string]bool
	savesBefore int
	saves       int
}

func (f *flakyStorage) Delete(ctx context.Context, p string) error {
	if f.failDelete[p] {
		return errors.New("permission denied")
	}
	return f.Storage.Delete(ctx, p)
}

func (f *flakyStorage) Save(ctx context.Context, p string, r io.Reader) error {
	f.mu.Lock()
	f.saves++
	n := f.saves
	f.mu.Unlock()
	if f.savesBefore > 0 && n > f.savesBefore {
		return errors.New("disk full")
	}
	return f.Storage.Save(ctx, p, r)
}

func newLocalStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type upload struct {
	name    string
	content []byte
}

// fileHeaders builds real multipart headers by parsing an encoded form.
func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}
