package service

import (
	"context"
	"strings"

	"tienda-catalog/internal/domain"
	"tienda-catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValidationError carries the full batch of user-displayable rule violations
// for a rejected payload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ImageDestroyer deletes a remote asset by its public id. Satisfied by the
// cloudinary client; mocked in tests.
type ImageDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

// ProductService orchestrates sanitize -> validate -> persist for products,
// plus the best-effort remote image cleanup on deletion.
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, raw map[string]any) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
	images   ImageDestroyer
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products repository.ProductRepository, images ImageDestroyer, logger *zap.Logger) ProductService {
	return &productService{
		products: products,
		images:   images,
		logger:   logger,
	}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

// Create sanitizes and validates the raw payload, then persists it. All rule
// violations come back together in one ValidationError.
func (s *productService) Create(ctx context.Context, raw map[string]any) (*domain.Product, error) {
	input := domain.SanitizeProduct(raw)

	if result := domain.ValidateProduct(input); !result.Valid {
		return nil, &ValidationError{Messages: result.Errors}
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Title:       input.Title,
		Price:       input.Price,
		Description: input.Description,
		Images:      input.Images,
		Talles:      input.Talles,
		Colores:     input.Colores,
		Sexo:        input.Sexo,
	}
	if input.Category != "" {
		categoryID, err := uuid.Parse(input.Category)
		if err == nil {
			product.CategoryID = &categoryID
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update sanitizes the partial payload and applies it; absent fields are
// left untouched.
func (s *productService) Update(ctx context.Context, id uuid.UUID, raw map[string]any) (*domain.Product, error) {
	patch := domain.SanitizeProductPatch(raw)

	if result := domain.ValidateProductPatch(patch); !result.Valid {
		return nil, &ValidationError{Messages: result.Errors}
	}

	return s.products.Update(ctx, id, patch)
}

// Delete removes the product after attempting to delete every remote image.
// The deletions run in parallel and each failure is logged and swallowed: a
// media-host rejection must never block the record deletion or the cleanup
// of the sibling images. There is no transactional link between the two
// steps; cleanup is best-effort only.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, img := range product.Images {
		publicID := img.CloudinaryID
		if publicID == "" {
			continue
		}
		g.Go(func() error {
			if err := s.images.Destroy(ctx, publicID); err != nil {
				s.logger.Warn("Failed to delete remote image",
					zap.String("product_id", id.String()),
					zap.String("cloudinary_id", publicID),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	// Every task returns nil, so this only synchronizes the fan-out.
	_ = g.Wait()

	return s.products.Delete(ctx, id)
}
