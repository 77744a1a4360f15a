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

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes. Reads are public; mutations
// require the admin middlewares.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, adminOnly ...func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Create)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// List returns every category ordered by name.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Create handles category creation; the slug is derived from the name.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Debug("Category create decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), raw)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			middleware.RespondWithErrors(w, http.StatusBadRequest, validationErr.Messages)
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			middleware.RespondWithError(w, http.StatusBadRequest, "Ya existe una categoría con ese nombre")
		default:
			h.logger.Error("Failed to create category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		}
		return
	}

	h.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update handles partial category updates; the id travels in the body.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Debug("Category update decode failed", zap.Error(err))
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

	category, err := h.categoryService.Update(r.Context(), id, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUpdates):
			middleware.RespondWithError(w, http.StatusBadRequest, "No hay datos para actualizar")
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Categoría no encontrada")
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			middleware.RespondWithError(w, http.StatusBadRequest, "Ya existe una categoría con ese nombre")
		default:
			h.logger.Error("Failed to update category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}

	h.logger.Info("Category updated", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete removes a category; referencing products lose the reference but
// stay in the catalog.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Categoría no encontrada")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Categoría eliminada",
	})
}
