package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/db"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "blog.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := db.Init("sqlite", dsn, db.Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(context.Background(), database.DB, "sqlite"))
	return database
}

func newUser(t *testing.T, users repository.UserRepository, email string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func newBlog(authorID, title string, status model.BlogStatus) *model.Blog {
	now := time.Now().UTC()
	category := model.DefaultCategoryID
	return &model.Blog{
		ID:         uuid.New().String(),
		Title:      title,
		Slug:       "slug",
		Content:    "content of " + title,
		AuthorID:   authorID,
		CategoryID: &category,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func images(blogID string, urls ...string) []model.BlogImage {
	out := make([]model.BlogImage, len(urls))
	for i, url := range urls {
		out[i] = model.BlogImage{
			ID:         uuid.New().String(),
			BlogID:     blogID,
			ImageURL:   url,
			ImageOrder: i,
			AltText:    "alt",
			IsFeatured: i == 0,
			CreatedAt:  time.Now().UTC(),
		}
	}
	return out
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := repository.NewUserRepository(openDB(t), time.Second)

	alice := newUser(t, users, "alice@x.com")

	dup := *alice
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, users.Create(ctx, &dup), repository.ErrDuplicateEmail)

	got, err := users.ByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.True(t, got.IsActive)

	require.NoError(t, users.SetActive(ctx, alice.ID, false, time.Now()))
	got, err = users.ByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, users.Delete(ctx, alice.ID))
	_, err = users.ByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestBlogImagesSummary(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	users := repository.NewUserRepository(database, time.Second)
	blogs := repository.NewBlogRepository(database, time.Second)
	alice := newUser(t, users, "alice@x.com")

	blog := newBlog(alice.ID, "Gallery", model.BlogStatusPublished)
	require.NoError(t, blogs.Create(ctx, blog, images(blog.ID, "/uploads/blogs/a.png", "/uploads/blogs/b.png", "/uploads/blogs/c.png")))

	stored, err := blogs.ByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.ImagesCount)
	require.NotNil(t, stored.FeaturedImage)
	assert.Equal(t, "/uploads/blogs/a.png", *stored.FeaturedImage)

	got, err := blogs.Images(ctx, blog.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/uploads/blogs/c.png", got[2].ImageURL)

	stored.FeaturedImage = nil
	require.NoError(t, blogs.UpdateWithImages(ctx, stored, images(blog.ID, "/uploads/blogs/d.png")))

	stored, err = blogs.ByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ImagesCount)
	assert.Equal(t, "/uploads/blogs/d.png", *stored.FeaturedImage)

	refs, err := blogs.ImageReferences(ctx, "d.png")
	require.NoError(t, err)
	require.NotEmpty(t, refs)
	assert.Equal(t, alice.ID, refs[0].AuthorID)

	refs, err = blogs.ImageReferences(ctx, "a.png")
	require.NoError(t, err)
	assert.Empty(t, refs)

	urls, err := blogs.ReferencedImageURLs(ctx)
	require.NoError(t, err)
	assert.Contains(t, urls, "/uploads/blogs/d.png")
	assert.NotContains(t, urls, "/uploads/blogs/a.png")
}

func TestBlogListFilters(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	users := repository.NewUserRepository(database, time.Second)
	blogs := repository.NewBlogRepository(database, time.Second)
	alice := newUser(t, users, "alice@x.com")

	for i, title := range []string{"Go Tips", "100% Coffee", "Travel notes"} {
		blog := newBlog(alice.ID, title, model.BlogStatusPublished)
		blog.CreatedAt = blog.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, blogs.Create(ctx, blog, nil))
	}
	require.NoError(t, blogs.Create(ctx, newBlog(alice.ID, "go draft", model.BlogStatusDraft), nil))

	list, total, err := blogs.List(ctx, repository.BlogFilter{Status: model.BlogStatusPublished, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Travel notes", list[0].Title)
	assert.Equal(t, alice.Name, list[0].AuthorName)

	list, total, err = blogs.List(ctx, repository.BlogFilter{Status: model.BlogStatusPublished, Search: "GO"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Go Tips", list[0].Title)

	_, total, err = blogs.List(ctx, repository.BlogFilter{Status: model.BlogStatusPublished, Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "wildcards are matched literally")

	_, total, err = blogs.List(ctx, repository.BlogFilter{AuthorID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	count, err := blogs.CountByAuthor(ctx, alice.ID, model.BlogStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLikeToggle(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	users := repository.NewUserRepository(database, time.Second)
	blogs := repository.NewBlogRepository(database, time.Second)
	likes := repository.NewLikeRepository(database, time.Second)

	alice := newUser(t, users, "alice@x.com")
	blog := newBlog(alice.ID, "Likeable", model.BlogStatusPublished)
	require.NoError(t, blogs.Create(ctx, blog, nil))

	liked, err := likes.Toggle(ctx, blog.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = likes.Toggle(ctx, blog.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err := likes.Count(ctx, blog.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestViewCountIsAtomic(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	users := repository.NewUserRepository(database, 5*time.Second)
	blogs := repository.NewBlogRepository(database, 5*time.Second)

	alice := newUser(t, users, "alice@x.com")
	blog := newBlog(alice.ID, "Popular", model.BlogStatusPublished)
	require.NoError(t, blogs.Create(ctx, blog, nil))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, blogs.IncrementViews(ctx, blog.ID))
		}()
	}
	wg.Wait()

	stored, err := blogs.ByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.ViewCount)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)
	users := repository.NewUserRepository(database, time.Second)
	blogs := repository.NewBlogRepository(database, time.Second)
	likes := repository.NewLikeRepository(database, time.Second)
	comments := repository.NewCommentRepository(database, time.Second)

	alice := newUser(t, users, "alice@x.com")
	bob := newUser(t, users, "bob@x.com")
	blog := newBlog(alice.ID, "Short lived", model.BlogStatusPublished)
	require.NoError(t, blogs.Create(ctx, blog, images(blog.ID, "/uploads/blogs/a.png")))

	_, err := likes.Toggle(ctx, blog.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, comments.Create(ctx, &model.Comment{
		ID: uuid.New().String(), BlogID: blog.ID, UserID: bob.ID, Content: "hi", CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, users.Delete(ctx, alice.ID))

	_, err = blogs.ByID(ctx, blog.ID)
	assert.ErrorIs(t, err, repository.ErrBlogNotFound)

	for _, table := range []string{"blog_images", "blog_likes", "comments"} {
		var n int
		require.NoError(t, database.Get(&n, database.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE blog_id = ?", table)), blog.ID))
		assert.Zero(t, n, table)
	}
}

func TestStatementTimeout(t *testing.T) {
	blogs := repository.NewBlogRepository(openDB(t), time.Nanosecond)

	_, err := blogs.ByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
