package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"tienda-catalog/internal/cloudinary"
	"tienda-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignUploadRequest asks for a signed direct-upload authorization.
type SignUploadRequest struct {
	Folder    string `json:"folder"`
	UsePreset bool   `json:"use_preset"`
}

// SignUploadResponse mirrors what the browser hands to the media host. The
// preset and folder appear only when they were part of the signed parameter
// set; anything else is null, never an empty string.
type SignUploadResponse struct {
	Signature    string  `json:"signature"`
	Timestamp    int64   `json:"timestamp"`
	APIKey       string  `json:"apiKey"`
	CloudName    string  `json:"cloudName"`
	UploadPreset *string `json:"uploadPreset"`
	Folder       *string `json:"folder"`
}

// UploadHandler issues upload signatures and exposes the unsigned preset.
type UploadHandler struct {
	media  *cloudinary.Client
	logger *zap.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(media *cloudinary.Client, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		media:  media,
		logger: logger,
	}
}

// RegisterRoutes registers the upload routes. Signing is admin-only since a
// valid signature authorizes a real upload; the unsigned preset is public.
func (h *UploadHandler) RegisterRoutes(r chi.Router, adminOnly ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly...)
		r.Post("/api/uploads", h.SignUpload)
	})
	r.Get("/api/cloudinary/preset", h.Preset)
}

// SignUpload issues a time-scoped signature for a direct client upload.
func (h *UploadHandler) SignUpload(w http.ResponseWriter, r *http.Request) {
	// Both fields are optional, so a missing or malformed body means an
	// unscoped signature rather than an error.
	var req SignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = SignUploadRequest{}
	}

	signed, err := h.media.SignUpload(req.Folder, req.UsePreset)
	if err != nil {
		if errors.Is(err, cloudinary.ErrSecretNotConfigured) {
			h.logger.Error("Upload signature requested without a configured secret")
			middleware.RespondWithError(w, http.StatusInternalServerError, "CLOUDINARY_API_SECRET not configured")
			return
		}
		h.logger.Error("Failed to sign upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to sign upload")
		return
	}

	response := SignUploadResponse{
		Signature: signed.Signature,
		Timestamp: signed.Timestamp,
		APIKey:    signed.APIKey,
		CloudName: signed.CloudName,
	}
	if signed.UploadPreset != "" {
		response.UploadPreset = &signed.UploadPreset
	}
	if signed.Folder != "" {
		response.Folder = &signed.Folder
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Preset exposes the public unsigned-upload configuration; the secret never
// appears here.
func (h *UploadHandler) Preset(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.media.UnsignedPreset())
}
