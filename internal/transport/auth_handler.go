package transport

import (
	"errors"
	"net/http"

	"tienda-catalog/internal/middleware"
	"tienda-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the admin login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthHandler handles admin panel authentication
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, extra ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(extra...)
		r.Post("/api/auth/login", h.Login)
	})
}

// Login checks the admin password and issues an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if messages := middleware.FormatValidationErrors(err); len(messages) > 0 {
			middleware.RespondWithErrors(w, http.StatusBadRequest, messages)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Debug("Login rejected")
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, service.ErrAuthNotConfigured):
			h.logger.Error("Login attempted without configured admin credentials")
			middleware.RespondWithError(w, http.StatusInternalServerError, "admin credentials not configured")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		}
		return
	}

	h.logger.Info("Admin logged in")
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}
