package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// CategoryService owns the category ledger: per-owner uniqueness, the
// denormalized task counter, and delete protection.
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns the owner's categories ordered by (sort_order, name).
func (s *CategoryService) List(ctx context.Context, ownerID uuid.UUID, filter ports.CategoryFilter) ([]*entities.Category, error) {
	return s.categoryRepo.List(ctx, ownerID, filter)
}

// Create adds a category for the owner, assigning the next sort order.
func (s *CategoryService) Create(ctx context.Context, ownerID uuid.UUID, req ports.CreateCategoryRequest) (*entities.Category, error) {
	taken, err := s.categoryRepo.NameExists(ctx, ownerID, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, entities.ErrDuplicateName
	}

	sortOrder, err := s.categoryRepo.NextSortOrder(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	category := &entities.Category{
		ID:          uuid.New(),
		UserID:      ownerID,
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
		IsActive:    true,
		SortOrder:   sortOrder,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Infow("Category created", "category_id", category.ID, "user_id", ownerID, "name", category.Name)
	return category, nil
}

// Update applies a partial patch, re-checking name uniqueness on rename.
func (s *CategoryService) Update(ctx context.Context, ownerID, id uuid.UUID, req ports.UpdateCategoryRequest) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		taken, err := s.categoryRepo.NameExists(ctx, ownerID, *req.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, entities.ErrDuplicateName
		}
		category.Name = *req.Name
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Infow("Category updated", "category_id", id, "user_id", ownerID)
	return category, nil
}

// Delete removes a category. Default categories are protected, and a category
// still referenced by tasks blocks the delete; callers must reassign or
// delete the dependent tasks first.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if category.IsDefault {
		return entities.ErrDefaultCategoryProtected
	}
	if category.TaskCount > 0 {
		return entities.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Infow("Category deleted", "category_id", id, "user_id", ownerID)
	return nil
}

// ToggleActive flips the active flag.
func (s *CategoryService) ToggleActive(ctx context.Context, ownerID, id uuid.UUID) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	category.IsActive = !category.IsActive
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Reorder sets the category's sort order.
func (s *CategoryService) Reorder(ctx context.Context, ownerID, id uuid.UUID, sortOrder int) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	category.SortOrder = sortOrder
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Stats aggregates the owner's categories, including the top five by task count.
func (s *CategoryService) Stats(ctx context.Context, ownerID uuid.UUID) (*ports.CategoryStats, error) {
	return s.categoryRepo.Stats(ctx, ownerID)
}
