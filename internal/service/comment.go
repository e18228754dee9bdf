package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
)

const (
	MaxCommentLength = 2000

	msgCommentRequired = "Nội dung bình luận không được để trống"
	msgCommentTooLong  = "Bình luận quá dài (tối đa 2000 ký tự)"
)

type CommentService struct {
	commentRepository repository.CommentRepository
	blogs             *BlogService
}

func NewCommentService(commentRepository repository.CommentRepository, blogs *BlogService) *CommentService {
	return &CommentService{
		commentRepository: commentRepository,
		blogs:             blogs,
	}
}

// List returns the comments of a post, oldest first. The post must be
// visible to the viewer; viewerID may be empty.
func (s *CommentService) List(ctx context.Context, blogID, viewerID string) ([]model.Comment, error) {
	_, err := s.blogs.visible(ctx, blogID, viewerID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepository.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to list comments: %w", err))
	}

	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, userID, blogID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation(msgCommentRequired)
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperr.Validation(msgCommentTooLong)
	}

	_, err := s.blogs.visible(ctx, blogID, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		BlogID:    blogID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	err = s.commentRepository.Create(ctx, comment)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to create comment: %w", err))
	}

	created, err := s.commentRepository.ByID(ctx, comment.ID)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to reload comment: %w", err))
	}

	slog.Info("comment created", "comment_id", comment.ID, "blog_id", blogID, "user_id", userID)
	return created, nil
}
