package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
)

func TestStoreImages(t *testing.T) {
	ctx := context.Background()
	store := newLocalStorage(t)
	uploads := NewUploadService(store, &fakeBlogRepository{})

	files, err := uploads.StoreImages(ctx, model.PurposeBlogs, fileHeaders(t,
		upload{name: "ảnh đẹp.PNG", content: pngBytes(t)},
		upload{name: "second.png", content: pngBytes(t)},
	))
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "anh__ep.PNG", files[0].OriginalName)
	assert.Equal(t, "image/png", files[0].MimeType)
	assert.True(t, strings.HasSuffix(files[0].Filename, ".png"), "extension is lowercased")
	assert.Equal(t, "/uploads/blogs/"+files[0].Filename, files[0].URL)
	assert.NotEqual(t, files[0].Filename, files[1].Filename)

	for _, f := range files {
		_, err := os.Stat(filepath.Join(store.Root(), "blogs", f.Filename))
		assert.NoError(t, err)
	}
}

func TestStoreImagesRejectsBatchBeforeWriting(t *testing.T) {
	ctx := context.Background()
	store := newLocalStorage(t)
	uploads := NewUploadService(store, &fakeBlogRepository{})

	_, err := uploads.StoreImages(ctx, model.PurposeBlogs, fileHeaders(t,
		upload{name: "ok.png", content: pngBytes(t)},
		upload{name: "notes.txt", content: []byte("hello")},
	))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "notes.txt")

	names, err := store.List(ctx, model.PurposeBlogs)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStoreImagesRejectsDisguisedFile(t *testing.T) {
	uploads := NewUploadService(newLocalStorage(t), &fakeBlogRepository{})

	_, err := uploads.StoreImages(context.Background(), model.PurposeBlogs, fileHeaders(t,
		upload{name: "script.png", content: []byte("#!/bin/sh\necho hi\n")},
	))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStoreImagesLimits(t *testing.T) {
	ctx := context.Background()
	uploads := NewUploadService(newLocalStorage(t), &fakeBlogRepository{})

	_, err := uploads.StoreImages(ctx, model.PurposeBlogs, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = uploads.StoreImages(ctx, model.PurposeAvatars, fileHeaders(t,
		upload{name: "a.png", content: pngBytes(t)},
		upload{name: "b.png", content: pngBytes(t)},
	))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	big := append(pngBytes(t), make([]byte, 2<<20)...)
	_, err = uploads.StoreImages(ctx, model.PurposeAvatars, fileHeaders(t, upload{name: "big.png", content: big}))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStoreImagesRollsBackPartialBatch(t *testing.T) {
	ctx := context.Background()
	local := newLocalStorage(t)
	store := &flakyStorage{Storage: local, savesBefore: 1}
	uploads := NewUploadService(store, &fakeBlogRepository{})

	_, err := uploads.StoreImages(ctx, model.PurposeBlogs, fileHeaders(t,
		upload{name: "a.png", content: pngBytes(t)},
		upload{name: "b.png", content: pngBytes(t)},
	))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))

	names, err := local.List(ctx, model.PurposeBlogs)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeleteImage(t *testing.T) {
	ctx := context.Background()
	store := newLocalStorage(t)
	repo := &fakeBlogRepository{refs: map[string][]repository.ImageReference{}}
	uploads := NewUploadService(store, repo)

	files, err := uploads.StoreImages(ctx, model.PurposeBlogs, fileHeaders(t,
		upload{name: "mine.png", content: pngBytes(t)},
		upload{name: "theirs.png", content: pngBytes(t)},
	))
	require.NoError(t, err)
	mine, theirs := files[0], files[1]

	repo.refs[mine.Filename] = []repository.ImageReference{{BlogID: "b1", AuthorID: "alice", ImageURL: mine.URL}}
	repo.refs[theirs.Filename] = []repository.ImageReference{{BlogID: "b2", AuthorID: "bob", ImageURL: theirs.URL}}

	t.Run("unsafe name", func(t *testing.T) {
		for _, name := range []string{"..", ".", "a/b.png", "../x.png", "ảnh.png"} {
			err := uploads.DeleteImage(ctx, "alice", name)
			assert.True(t, apperr.Is(err, apperr.KindValidation), name)
		}
	})

	t.Run("another author's image", func(t *testing.T) {
		err := uploads.DeleteImage(ctx, "alice", theirs.Filename)
		assert.Equal(t, 404, apperr.KindOf(err).Status())

		_, statErr := os.Stat(filepath.Join(store.Root(), "blogs", theirs.Filename))
		assert.NoError(t, statErr)
	})

	t.Run("own image", func(t *testing.T) {
		require.NoError(t, uploads.DeleteImage(ctx, "alice", mine.Filename))

		err := uploads.DeleteImage(ctx, "alice", mine.Filename)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("missing file", func(t *testing.T) {
		err := uploads.DeleteImage(ctx, "alice", "00000000-0000-0000-0000-000000000000.png")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "a.png", filenameFromURL("/uploads/blogs/a.png"))
	assert.Equal(t, "a.png", filenameFromURL("https://cdn.example.com/bucket/blogs/a.png?v=2"))
	assert.Equal(t, "", filenameFromURL(""))
	assert.Equal(t, "", filenameFromURL("/uploads/blogs/"))
}
