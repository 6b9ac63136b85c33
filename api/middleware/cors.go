package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/voltedge/renewals-backend/pkg/config"
)

// CORS builds the cross-origin policy from configuration so each deployment
// can list its own frontends.
func CORS(cfg config.HTTPConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
