package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"tienda-catalog/internal/domain"
	"tienda-catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	if patch.Title != nil {
		product.Title = *patch.Title
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Images != nil {
		product.Images = *patch.Images
	}
	return product, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	list := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		list = append(list, p)
	}
	return list, nil
}

// mockDestroyer records destroy attempts and fails for configured ids.
type mockDestroyer struct {
	mu        sync.Mutex
	attempted []string
	failFor   map[string]bool
}

func newMockDestroyer(failFor ...string) *mockDestroyer {
	fails := make(map[string]bool, len(failFor))
	for _, id := range failFor {
		fails[id] = true
	}
	return &mockDestroyer{failFor: fails}
}

func (m *mockDestroyer) Destroy(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempted = append(m.attempted, publicID)
	if m.failFor[publicID] {
		return errors.New("media host rejected deletion")
	}
	return nil
}

func (m *mockDestroyer) attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempted...)
}

func validProductPayload() map[string]any {
	return map[string]any{
		"title": "Remera lisa",
		"price": 1500.0,
		"images": []any{
			map[string]any{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
		},
	}
}

func TestProductServiceCreate(t *testing.T) {
	t.Run("valid payload persists and assigns an id", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, newMockDestroyer(), zap.NewNop())

		product, err := svc.Create(context.Background(), validProductPayload())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if product.ID == uuid.Nil {
			t.Error("expected a generated id")
		}
		if _, exists := repo.products[product.ID]; !exists {
			t.Error("product was not persisted")
		}
	})

	t.Run("invalid payload returns the full violation batch", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, newMockDestroyer(), zap.NewNop())

		_, err := svc.Create(context.Background(), map[string]any{"price": -1.0})

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		// Title, price and images are all broken.
		if len(validationErr.Messages) != 3 {
			t.Errorf("messages = %v, want 3", validationErr.Messages)
		}
		if len(repo.products) != 0 {
			t.Error("nothing should be persisted on validation failure")
		}
	})
}

func TestProductServiceUpdate(t *testing.T) {
	t.Run("unknown id passes through not-found", func(t *testing.T) {
		svc := NewProductService(newMockProductRepository(), newMockDestroyer(), zap.NewNop())

		_, err := svc.Update(context.Background(), uuid.New(), map[string]any{"title": "Nueva"})
		if !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("err = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("only present fields change", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, newMockDestroyer(), zap.NewNop())

		created, err := svc.Create(context.Background(), validProductPayload())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		updated, err := svc.Update(context.Background(), created.ID, map[string]any{"price": 2000.0})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Price != 2000 {
			t.Errorf("Price = %v, want 2000", updated.Price)
		}
		if updated.Title != "Remera lisa" {
			t.Errorf("Title = %q, want untouched", updated.Title)
		}
	})

	t.Run("invalid patch is rejected before persistence", func(t *testing.T) {
		repo := newMockProductRepository()
		svc := NewProductService(repo, newMockDestroyer(), zap.NewNop())

		created, err := svc.Create(context.Background(), validProductPayload())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		_, err = svc.Update(context.Background(), created.ID, map[string]any{"price": -10.0})
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})
}

func TestProductServiceDelete(t *testing.T) {
	t.Run("deletes remote images then the record", func(t *testing.T) {
		repo := newMockProductRepository()
		destroyer := newMockDestroyer()
		svc := NewProductService(repo, destroyer, zap.NewNop())

		payload := validProductPayload()
		payload["images"] = []any{
			map[string]any{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
			map[string]any{"url": "https://img/2.jpg", "cloudinaryId": "img-2"},
		}
		created, err := svc.Create(context.Background(), payload)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if err := svc.Delete(context.Background(), created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if len(repo.products) != 0 {
			t.Error("product record was not deleted")
		}
		if got := destroyer.attempts(); len(got) != 2 {
			t.Errorf("attempts = %v, want both images", got)
		}
	})

	t.Run("a rejected remote deletion never blocks the record or siblings", func(t *testing.T) {
		repo := newMockProductRepository()
		destroyer := newMockDestroyer("img-2")
		svc := NewProductService(repo, destroyer, zap.NewNop())

		payload := validProductPayload()
		payload["images"] = []any{
			map[string]any{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
			map[string]any{"url": "https://img/2.jpg", "cloudinaryId": "img-2"},
			map[string]any{"url": "https://img/3.jpg", "cloudinaryId": "img-3"},
		}
		created, err := svc.Create(context.Background(), payload)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if err := svc.Delete(context.Background(), created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if len(repo.products) != 0 {
			t.Error("product record should be deleted despite the rejection")
		}
		attempts := destroyer.attempts()
		if len(attempts) != 3 {
			t.Errorf("attempts = %v, want all three images", attempts)
		}
		joined := strings.Join(attempts, ",")
		for _, id := range []string{"img-1", "img-2", "img-3"} {
			if !strings.Contains(joined, id) {
				t.Errorf("attempts = %v, missing %s", attempts, id)
			}
		}
	})

	t.Run("unknown id passes through not-found", func(t *testing.T) {
		svc := NewProductService(newMockProductRepository(), newMockDestroyer(), zap.NewNop())

		if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, repository.ErrProductNotFound) {
			t.Errorf("err = %v, want ErrProductNotFound", err)
		}
	})
}
