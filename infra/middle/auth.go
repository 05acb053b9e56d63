package middle

import (
	"context"
	"net/http"
	"strings"

	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/opensearch"
	"github.com/paywire/paywire/infra/response"
)

// AuthMiddleware validates API key authentication
func AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expectedAPIKey := config.GetEnv("API_KEY", "")
			if expectedAPIKey == "" {
				response.Error(w, http.StatusInternalServerError, "API key not configured", nil)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Authorization header required", nil)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <api_key>", nil)
				return
			}

			apiKey := strings.TrimPrefix(authHeader, "Bearer ")
			if apiKey == "" {
				response.Error(w, http.StatusUnauthorized, "API key required", nil)
				return
			}

			if apiKey != expectedAPIKey {
				response.Error(w, http.StatusUnauthorized, "Invalid API key", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TenantMiddleware propagates the X-Tenant-ID header into the request
// context so downstream logging can route to per-tenant indices.
func TenantMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenantID := r.Header.Get("X-Tenant-ID"); tenantID != "" {
				ctx := context.WithValue(r.Context(), opensearch.TenantIDKey, tenantID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetTenantIDFromContext returns the tenant ID set by TenantMiddleware.
func GetTenantIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(opensearch.TenantIDKey).(string); ok {
		return v
	}
	return ""
}
