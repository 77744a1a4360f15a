package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"tienda-catalog/internal/middleware"
	"tienda-catalog/internal/repository"
	"tienda-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public; mutations
// require the admin middlewares.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly ...func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Create)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// List returns every product, newest first, with its category joined.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Debug("Product create decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), raw)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.logger.Debug("Product validation failed", zap.Strings("errors", validationErr.Messages))
			middleware.RespondWithErrors(w, http.StatusBadRequest, validationErr.Messages)
		case errors.Is(err, repository.ErrCategoryRefInvalid):
			middleware.RespondWithError(w, http.StatusBadRequest, "La categoría debe ser un ID válido")
		default:
			h.logger.Error("Failed to create product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		}
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates; the id travels in the body.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Debug("Product update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawID, _ := raw["id"].(string)
	if rawID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "falta id")
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "id inválido")
		return
	}
	delete(raw, "id")

	product, err := h.productService.Update(r.Context(), id, raw)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			middleware.RespondWithErrors(w, http.StatusBadRequest, validationErr.Messages)
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "no encontrado")
		case errors.Is(err, repository.ErrCategoryRefInvalid):
			middleware.RespondWithError(w, http.StatusBadRequest, "La categoría debe ser un ID válido")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product after the best-effort remote image cleanup.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rawID := r.URL.Query().Get("id")
	if rawID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "falta id")
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "id inválido")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no encontrado")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
