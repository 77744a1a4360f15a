package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// API error responses follow the storefront contract: a single message is
// {"error": "..."} and a validation batch is {"error": ["...", ...]}.

type errorResponse struct {
	Error string `json:"error"`
}

type errorListResponse struct {
	Error []string `json:"error"`
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithError sends a single-message error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, errorResponse{Error: message})
}

// RespondWithErrors sends the full batch of violation messages, never a
// partial subset.
func RespondWithErrors(w http.ResponseWriter, statusCode int, messages []string) {
	RespondWithJSON(w, statusCode, errorListResponse{Error: messages})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
