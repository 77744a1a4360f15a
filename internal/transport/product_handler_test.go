package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-catalog/internal/domain"
	"tienda-catalog/internal/repository"
	"tienda-catalog/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
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

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == category.Name || existing.Slug == category.Slug {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	if patch.Name != nil {
		category.Name = *patch.Name
		category.Slug = domain.Slugify(*patch.Name)
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}
	return category, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.categories[id]; !exists {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, exists := m.categories[id]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	list := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		list = append(list, c)
	}
	return list, nil
}

// noopDestroyer accepts every remote deletion.
type noopDestroyer struct{}

func (noopDestroyer) Destroy(ctx context.Context, publicID string) error { return nil }

func newProductHandler() (*ProductHandler, *mockProductRepository) {
	repo := newMockProductRepository()
	svc := service.NewProductService(repo, noopDestroyer{}, zap.NewNop())
	return NewProductHandler(svc, zap.NewNop()), repo
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func putJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestProductHandlerCreate(t *testing.T) {
	t.Run("valid payload returns 201 with the stored product", func(t *testing.T) {
		handler, _ := newProductHandler()

		w := postJSON(t, handler.Create, "/api/products", map[string]any{
			"title": "Remera lisa",
			"price": 1500,
			"images": []map[string]any{
				{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
			},
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["title"] != "Remera lisa" {
			t.Errorf("title = %v", body["title"])
		}
		if _, err := uuid.Parse(body["id"].(string)); err != nil {
			t.Errorf("id is not a uuid: %v", body["id"])
		}
	})

	t.Run("empty images returns 400 with the error list", func(t *testing.T) {
		handler, _ := newProductHandler()

		w := postJSON(t, handler.Create, "/api/products", map[string]any{
			"title":  "Remera lisa",
			"price":  1500,
			"images": []any{},
		})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		body := decodeBody(t, w)
		list, ok := body["error"].([]any)
		if !ok {
			t.Fatalf("error field = %v, want a list", body["error"])
		}
		if list[0] != "Se requiere al menos una imagen" {
			t.Errorf("error = %v", list[0])
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		handler, _ := newProductHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestProductHandlerUpdate(t *testing.T) {
	t.Run("missing id in the body", func(t *testing.T) {
		handler, _ := newProductHandler()

		w := putJSON(t, handler.Update, "/api/products", map[string]any{"title": "Nueva"})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if decodeBody(t, w)["error"] != "falta id" {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("non-uuid id", func(t *testing.T) {
		handler, _ := newProductHandler()

		w := putJSON(t, handler.Update, "/api/products", map[string]any{"id": "abc", "title": "Nueva"})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if decodeBody(t, w)["error"] != "id inválido" {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		handler, _ := newProductHandler()

		w := putJSON(t, handler.Update, "/api/products", map[string]any{
			"id":    uuid.NewString(),
			"title": "Nueva",
		})

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		if decodeBody(t, w)["error"] != "no encontrado" {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("partial update changes only the sent fields", func(t *testing.T) {
		handler, repo := newProductHandler()

		created := postJSON(t, handler.Create, "/api/products", map[string]any{
			"title": "Remera lisa",
			"price": 1500,
			"images": []map[string]any{
				{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
			},
		})
		if created.Code != http.StatusCreated {
			t.Fatalf("create status = %d", created.Code)
		}
		id := decodeBody(t, created)["id"].(string)

		w := putJSON(t, handler.Update, "/api/products", map[string]any{
			"id":    id,
			"price": 1999,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}

		stored := repo.products[uuid.MustParse(id)]
		if stored.Price != 1999 {
			t.Errorf("Price = %v, want 1999", stored.Price)
		}
		if stored.Title != "Remera lisa" {
			t.Errorf("Title = %q, want untouched", stored.Title)
		}
	})
}

func TestProductHandlerDelete(t *testing.T) {
	t.Run("missing query id", func(t *testing.T) {
		handler, _ := newProductHandler()

		req := httptest.NewRequest(http.MethodDelete, "/api/products", nil)
		w := httptest.NewRecorder()
		handler.Delete(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if decodeBody(t, w)["error"] != "falta id" {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("existing product returns ok and removes the record", func(t *testing.T) {
		handler, repo := newProductHandler()

		created := postJSON(t, handler.Create, "/api/products", map[string]any{
			"title": "Remera lisa",
			"price": 1500,
			"images": []map[string]any{
				{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
			},
		})
		id := decodeBody(t, created)["id"].(string)

		req := httptest.NewRequest(http.MethodDelete, "/api/products?id="+id, nil)
		w := httptest.NewRecorder()
		handler.Delete(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		if decodeBody(t, w)["ok"] != true {
			t.Errorf("body = %s", w.Body.String())
		}
		if len(repo.products) != 0 {
			t.Error("product record survived the delete")
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		handler, _ := newProductHandler()

		req := httptest.NewRequest(http.MethodDelete, "/api/products?id="+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		handler.Delete(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

func TestProperty_CreatedProductRoundTripsThroughList(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a created product comes back from the list endpoint", prop.ForAll(
		func(title string, price float64) bool {
			handler, _ := newProductHandler()

			created := postJSON(t, handler.Create, "/api/products", map[string]any{
				"title": title,
				"price": price,
				"images": []map[string]any{
					{"url": "https://img/1.jpg", "cloudinaryId": "img-1"},
				},
			})
			if created.Code != http.StatusCreated {
				t.Logf("FAIL: create returned %d", created.Code)
				return false
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			w := httptest.NewRecorder()
			handler.List(w, req)
			if w.Code != http.StatusOK {
				t.Logf("FAIL: list returned %d", w.Code)
				return false
			}

			var listed []map[string]any
			if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
				t.Logf("FAIL: could not decode list: %v", err)
				return false
			}
			if len(listed) != 1 {
				t.Logf("FAIL: expected one product, got %d", len(listed))
				return false
			}
			return listed[0]["title"] == title
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9]{2,30}`),
		gen.Float64Range(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
