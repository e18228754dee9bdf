package service

import (
	"context"
	"fmt"

	"github.com/templui/blogapi/internal/apperr"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
)

type CategoryService struct {
	categoryRepository repository.CategoryRepository
}

func NewCategoryService(categoryRepository repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepository: categoryRepository}
}

// List returns active categories with their published post counts.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepository.ListActive(ctx)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("failed to list categories: %w", err))
	}
	return categories, nil
}
