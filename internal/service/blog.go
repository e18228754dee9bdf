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
	"github.com/templui/blogapi/internal/markdown"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/sanitize"
	"github.com/templui/blogapi/internal/validation"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	maxTitleLength = 255

	msgBlogRequired    = "Tiêu đề và nội dung là bắt buộc"
	msgBlogNotFound    = "Blog không tồn tại"
	msgInvalidStatus   = "Trạng thái không hợp lệ"
	msgInvalidCategory = "Danh mục không tồn tại"
	msgTooManyImages   = "Tối đa 10 hình ảnh cho mỗi blog"
	msgImageURLMissing = "Hình ảnh thiếu đường dẫn"
)

type BlogService struct {
	blogRepository     repository.BlogRepository
	likeRepository     repository.LikeRepository
	categoryRepository repository.CategoryRepository
	parser             *markdown.Parser
}

func NewBlogService(
	blogRepository repository.BlogRepository,
	likeRepository repository.LikeRepository,
	categoryRepository repository.CategoryRepository,
	parser *markdown.Parser,
) *BlogService {
	return &BlogService{
		blogRepository:     blogRepository,
		likeRepository:     likeRepository,
		categoryRepository: categoryRepository,
		parser:             parser,
	}
}

type ListBlogsInput struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

type BlogList struct {
	Blogs      []model.BlogSummary `json:"blogs"`
	Pagination model.Pagination    `json:"pagination"`
}

// page normalizes page/limit and returns the SQL offset.
func page(p, limit int) (int, int, int) {
	if p < 1 {
		p = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return p, limit, (p - 1) * limit
}

func newPagination(p, limit, total int) model.Pagination {
	return model.Pagination{
		CurrentPage: p,
		PerPage:     limit,
		Total:       total,
		TotalPages:  (total + limit - 1) / limit,
	}
}

// List returns published posts, newest first.
func (s *BlogService) List(ctx context.Context, in ListBlogsInput) (*BlogList, error) {
	p, limit, offset := page(in.Page, in.Limit)

	blogs, total, err := s.blogRepository.List(ctx, repository.BlogFilter{
		Status:       model.BlogStatusPublished,
		Search:       in.Search,
		CategorySlug: strings.TrimSpace(in.Category),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to list blogs: %w", err))
	}

	return &BlogList{Blogs: blogs, Pagination: newPagination(p, limit, total)}, nil
}

// MyBlogs lists every post of the author regardless of status.
func (s *BlogService) MyBlogs(ctx context.Context, authorID string, pageNum, limit int) (*BlogList, error) {
	p, limit, offset := page(pageNum, limit)

	blogs, total, err := s.blogRepository.List(ctx, repository.BlogFilter{
		AuthorID: authorID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to list blogs: %w", err))
	}

	return &BlogList{Blogs: blogs, Pagination: newPagination(p, limit, total)}, nil
}

// Get returns one post. Posts that are not published are only visible to
// their author; everyone else gets NotFound. Each successful read counts
// as a view.
func (s *BlogService) Get(ctx context.Context, id string, viewer *model.Identity) (*model.BlogDetail, error) {
	viewerID := ""
	if viewer != nil {
		viewerID = viewer.ID
	}

	summary, err := s.blogRepository.SummaryByID(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return nil, apperr.NotFound(msgBlogNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get blog: %w", err))
	}
	if !summary.VisibleTo(viewerID) {
		return nil, apperr.Forbidden(msgBlogNotFound)
	}

	err = s.blogRepository.IncrementViews(ctx, id)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to count view: %w", err))
	}
	summary.ViewCount++

	return s.detail(ctx, summary, viewerID)
}

func (s *BlogService) detail(ctx context.Context, summary *model.BlogSummary, viewerID string) (*model.BlogDetail, error) {
	images, err := s.blogRepository.Images(ctx, summary.ID)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get blog images: %w", err))
	}

	liked := false
	if viewerID != "" {
		liked, err = s.likeRepository.Exists(ctx, summary.ID, viewerID)
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("failed to check like: %w", err))
		}
	}

	html, err := s.parser.Render(summary.Content)
	if err != nil {
		slog.Warn("failed to render blog content", "blog_id", summary.ID, "error", err)
	}

	return &model.BlogDetail{
		BlogSummary: *summary,
		ContentHTML: html,
		Images:      images,
		Liked:       liked,
	}, nil
}

// ImageInput is one entry of a post's gallery, in display order.
type ImageInput struct {
	URL     string
	Caption string
	Alt     string
}

type CreateBlogInput struct {
	Title         string
	Content       string
	Excerpt       *string
	CategoryID    *int64
	FeaturedImage *string
	Status        model.BlogStatus
	Images        []ImageInput
}

func (s *BlogService) Create(ctx context.Context, authorID string, in CreateBlogInput) (*model.BlogDetail, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation(msgBlogRequired)
	}
	if err := validation.ValidateMaxLength("Tiêu đề", title, maxTitleLength); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	status := in.Status
	if status == "" {
		status = model.BlogStatusDraft
	}
	if !status.Valid() {
		return nil, apperr.Validation(msgInvalidStatus)
	}

	categoryID := model.DefaultCategoryID
	if in.CategoryID != nil {
		categoryID = *in.CategoryID
	}
	err := s.checkCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	blog := &model.Blog{
		ID:            uuid.New().String(),
		Title:         title,
		Slug:          sanitize.Slug(title),
		Content:       in.Content,
		Excerpt:       s.excerpt(in.Excerpt, in.Content),
		AuthorID:      authorID,
		CategoryID:    &categoryID,
		FeaturedImage: optionalPtr(in.FeaturedImage),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	images, err := buildImages(blog, in.Images, now)
	if err != nil {
		return nil, err
	}

	err = s.blogRepository.Create(ctx, blog, images)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to create blog: %w", err))
	}

	slog.Info("blog created", "blog_id", blog.ID, "author_id", authorID, "images", len(images))
	return s.reload(ctx, blog.ID, authorID)
}

// UpdateBlogInput carries the fields to change. Nil fields keep their
// current value; a non-nil Images replaces the whole gallery.
type UpdateBlogInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	CategoryID    *int64
	FeaturedImage *string
	Status        *model.BlogStatus
	Images        *[]ImageInput
}

func (s *BlogService) Update(ctx context.Context, authorID, id string, in UpdateBlogInput) (*model.BlogDetail, error) {
	blog, err := s.owned(ctx, authorID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation(msgBlogRequired)
		}
		if err := validation.ValidateMaxLength("Tiêu đề", title, maxTitleLength); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if title != blog.Title {
			blog.Title = title
			blog.Slug = sanitize.Slug(title)
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.Validation(msgBlogRequired)
		}
		blog.Content = *in.Content
	}
	if in.Excerpt != nil {
		blog.Excerpt = s.excerpt(in.Excerpt, blog.Content)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation(msgInvalidStatus)
		}
		blog.Status = *in.Status
	}
	if in.CategoryID != nil {
		err := s.checkCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		blog.CategoryID = in.CategoryID
	}
	if in.FeaturedImage != nil {
		blog.FeaturedImage = optionalPtr(in.FeaturedImage)
	}

	now := time.Now().UTC()
	blog.UpdatedAt = now

	if in.Images == nil {
		err = s.blogRepository.Update(ctx, blog)
	} else {
		var images []model.BlogImage
		images, err = buildImages(blog, *in.Images, now)
		if err != nil {
			return nil, err
		}
		if len(images) == 0 && in.FeaturedImage == nil {
			blog.FeaturedImage = nil
		}
		err = s.blogRepository.UpdateWithImages(ctx, blog, images)
	}
	if errors.Is(err, repository.ErrBlogNotFound) {
		return nil, apperr.NotFound(msgBlogNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to update blog: %w", err))
	}

	slog.Info("blog updated", "blog_id", id, "author_id", authorID)
	return s.reload(ctx, id, authorID)
}

// Delete removes the post and, by cascade, its images, comments and likes.
// Stored image files are left for the cleanup job.
func (s *BlogService) Delete(ctx context.Context, authorID, id string) error {
	_, err := s.owned(ctx, authorID, id)
	if err != nil {
		return err
	}

	err = s.blogRepository.Delete(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return apperr.NotFound(msgBlogNotFound)
	}
	if err != nil {
		return apperr.Storage(fmt.Errorf("failed to delete blog: %w", err))
	}

	slog.Info("blog deleted", "blog_id", id, "author_id", authorID)
	return nil
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

func (s *BlogService) ToggleLike(ctx context.Context, userID, id string) (*LikeResult, error) {
	_, err := s.visible(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepository.Toggle(ctx, id, userID)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to toggle like: %w", err))
	}

	count, err := s.likeRepository.Count(ctx, id)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to count likes: %w", err))
	}

	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

// visible loads a post the viewer may read. Hidden posts are NotFound.
func (s *BlogService) visible(ctx context.Context, id, viewerID string) (*model.Blog, error) {
	blog, err := s.blogRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return nil, apperr.NotFound(msgBlogNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get blog: %w", err))
	}
	if !blog.VisibleTo(viewerID) {
		return nil, apperr.Forbidden(msgBlogNotFound)
	}
	return blog, nil
}

// owned loads a post for mutation by its author. Posts owned by someone
// else are reported the same way as missing ones.
func (s *BlogService) owned(ctx context.Context, authorID, id string) (*model.Blog, error) {
	blog, err := s.blogRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return nil, apperr.NotFound(msgBlogNotFound)
	}
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to get blog: %w", err))
	}
	if blog.AuthorID != authorID {
		return nil, apperr.Forbidden(msgBlogNotFound)
	}
	return blog, nil
}

func (s *BlogService) reload(ctx context.Context, id, viewerID string) (*model.BlogDetail, error) {
	summary, err := s.blogRepository.SummaryByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to reload blog: %w", err))
	}
	return s.detail(ctx, summary, viewerID)
}

func (s *BlogService) checkCategory(ctx context.Context, id int64) error {
	ok, err := s.categoryRepository.Exists(ctx, id)
	if err != nil {
		return apperr.Storage(fmt.Errorf("failed to check category: %w", err))
	}
	if !ok {
		return apperr.Validation(msgInvalidCategory)
	}
	return nil
}

// excerpt returns the supplied excerpt, or one derived from content when it
// is missing or blank.
func (s *BlogService) excerpt(given *string, content string) *string {
	if e := optionalPtr(given); e != nil {
		return e
	}
	derived := s.parser.Excerpt(content)
	if derived == "" {
		return nil
	}
	return &derived
}

// buildImages turns the gallery into rows. Position is the display order and
// position 0 is the featured image.
func buildImages(blog *model.Blog, inputs []ImageInput, now time.Time) ([]model.BlogImage, error) {
	if len(inputs) > MaxBlogImages {
		return nil, apperr.Validation(msgTooManyImages)
	}

	images := make([]model.BlogImage, 0, len(inputs))
	for i, in := range inputs {
		url := strings.TrimSpace(in.URL)
		if url == "" {
			return nil, apperr.Validation(msgImageURLMissing)
		}

		alt := strings.TrimSpace(in.Alt)
		if alt == "" {
			alt = blog.Title
		}

		images = append(images, model.BlogImage{
			ID:         uuid.New().String(),
			BlogID:     blog.ID,
			ImageURL:   url,
			ImageOrder: i,
			Caption:    optional(in.Caption),
			AltText:    alt,
			IsFeatured: i == 0,
			CreatedAt:  now,
		})
	}

	return images, nil
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}
