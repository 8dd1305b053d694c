package service

import (
	"context"

	"github.com/setorin/setorin-backend/internal/domain"
)

// CategoryService exposes the read-only category catalog to the API layer.
// Category administration is an external flow; the ledger only reads.
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListCategories returns the catalog, active entries only by default.
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) ([]*domain.CashCategory, error) {
	return s.categoryRepo.List(ctx, !includeInactive)
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id int32) (*domain.CashCategory, error) {
	return s.categoryRepo.GetByID(ctx, id)
}
