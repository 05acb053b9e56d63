package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/paywire/paywire/handler"
	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/middle"
	"github.com/paywire/paywire/infra/opensearch"
	"github.com/paywire/paywire/provider"

	// Register gateway dialects.
	_ "github.com/paywire/paywire/provider/payflow"
	_ "github.com/paywire/paywire/provider/securenet"
)

// Routes mounts the versioned API onto r. The health endpoint stays outside
// /v1 so load balancers can probe it without credentials.
func Routes(r chi.Router, paymentService *provider.PaymentService, providerConfig *config.ProviderConfig, osLogger *opensearch.Logger) {
	validate := config.App().Validator

	paymentHandler := handler.NewPaymentHandler(paymentService, validate)
	configHandler := handler.NewConfigHandler(providerConfig, paymentService, validate)
	healthHandler := handler.NewHealthHandler(paymentService, providerConfig)

	r.Get("/health", healthHandler.CheckHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middle.AuthMiddleware())
		r.Use(middle.TenantMiddleware())

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", paymentHandler.ProcessTransaction) // default provider
			r.Post("/{provider}", paymentHandler.ProcessTransaction)
			r.Post("/{provider}/refund", paymentHandler.RefundTransaction)
			r.Get("/{provider}/{reference}", paymentHandler.GetTransactionStatus)
			r.Delete("/{provider}/{reference}", paymentHandler.VoidTransaction)
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Post("/{provider}", paymentHandler.ProcessRecurring)
		})

		r.Route("/vault", func(r chi.Router) {
			r.Post("/{provider}", paymentHandler.StoreAccount)
			r.Delete("/{provider}", paymentHandler.UnstoreAccount)
		})

		r.Get("/providers", paymentHandler.ListProviders)

		r.Route("/config", func(r chi.Router) {
			r.Post("/tenant", configHandler.SetTenantConfig)
			r.Get("/tenant", configHandler.GetTenantConfig)
			r.Delete("/tenant", configHandler.DeleteTenantConfig)
			r.Get("/stats", configHandler.GetStats)
		})

		if osLogger != nil {
			logsHandler := handler.NewLogsHandler(osLogger)
			r.Route("/logs", func(r chi.Router) {
				r.Get("/{provider}", logsHandler.ListLogs)
				r.Get("/{provider}/errors", logsHandler.GetErrorLogs)
				r.Get("/{provider}/{reference}", logsHandler.GetTransactionLogs)
			})
		}
	})
}
