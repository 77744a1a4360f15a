package service

import (
	"context"
	"errors"
	"strings"

	"tienda-catalog/internal/domain"
	"tienda-catalog/internal/repository"

	"github.com/google/uuid"
)

// ErrNoUpdates is returned when an update payload carries no usable fields.
var ErrNoUpdates = errors.New("no fields to update")

// CategoryService orchestrates category CRUD. Slugs are derived from the
// name on create and regenerate on rename; uniqueness of both name and slug
// is enforced by the store and surfaces as ErrCategoryAlreadyExists.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, raw map[string]any) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Create(ctx context.Context, raw map[string]any) (*domain.Category, error) {
	name, _ := raw["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Messages: []string{"El nombre es requerido"}}
	}

	category := &domain.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: domain.Slugify(name),
	}
	if description, ok := raw["description"].(string); ok {
		category.Description = strings.TrimSpace(description)
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*domain.Category, error) {
	var patch domain.CategoryPatch

	if name, ok := raw["name"].(string); ok {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			patch.Name = &trimmed
		}
	}
	if v, ok := raw["description"]; ok {
		// Present but empty (or null) clears the description.
		trimmed := ""
		if s, ok := v.(string); ok {
			trimmed = strings.TrimSpace(s)
		}
		patch.Description = &trimmed
	}

	if patch.IsEmpty() {
		return nil, ErrNoUpdates
	}

	return s.categories.Update(ctx, id, patch)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}
