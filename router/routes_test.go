package router

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/opensearch"
	"github.com/paywire/paywire/provider"
)

func newRouterDeps(t *testing.T) (*provider.PaymentService, *config.ProviderConfig) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	providerConfig := config.NewProviderConfig(dbPath)
	t.Cleanup(func() { providerConfig.Close() })

	return provider.NewPaymentService(nil), providerConfig
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name   string
		logger *opensearch.Logger
	}{
		{name: "with_logger", logger: &opensearch.Logger{}},
		{name: "nil_logger", logger: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentService, providerConfig := newRouterDeps(t)

			r := chi.NewRouter()
			require.NotNil(t, r)

			assert.NotPanics(t, func() {
				Routes(r, paymentService, providerConfig, tt.logger)
			})
		})
	}
}

func TestRoutes_RegisteredPaths(t *testing.T) {
	paymentService, providerConfig := newRouterDeps(t)

	r := chi.NewRouter()
	Routes(r, paymentService, providerConfig, &opensearch.Logger{})

	registered := map[string]bool{}
	err := chi.Walk(r, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	expected := []string{
		"GET /health",
		"POST /v1/payments/",
		"POST /v1/payments/{provider}",
		"POST /v1/payments/{provider}/refund",
		"GET /v1/payments/{provider}/{reference}",
		"DELETE /v1/payments/{provider}/{reference}",
		"POST /v1/recurring/{provider}",
		"POST /v1/vault/{provider}",
		"DELETE /v1/vault/{provider}",
		"GET /v1/providers",
		"POST /v1/config/tenant",
		"GET /v1/config/tenant",
		"DELETE /v1/config/tenant",
		"GET /v1/config/stats",
		"GET /v1/logs/{provider}",
		"GET /v1/logs/{provider}/errors",
		"GET /v1/logs/{provider}/{reference}",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}

func TestRoutes_LogsRequireLogger(t *testing.T) {
	paymentService, providerConfig := newRouterDeps(t)

	r := chi.NewRouter()
	Routes(r, paymentService, providerConfig, nil)

	registered := map[string]bool{}
	err := chi.Walk(r, func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	assert.False(t, registered["GET /v1/logs/{provider}"], "log routes should not exist without a logger")
}

func TestProviderRegistration(t *testing.T) {
	// The side-effect imports register both dialects.
	names := provider.DefaultRegistry.Names()
	assert.Contains(t, names, "payflow")
	assert.Contains(t, names, "securenet")
}
