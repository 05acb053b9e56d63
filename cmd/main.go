package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/logger"
	"github.com/paywire/paywire/infra/middle"
	"github.com/paywire/paywire/infra/opensearch"
	"github.com/paywire/paywire/infra/response"
	"github.com/paywire/paywire/provider"
	"github.com/paywire/paywire/router"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	config.App()
}

func main() {
	appConfig := config.GetAppConfig()

	osClient, err := opensearch.NewClient(appConfig)
	if err != nil {
		log.Printf("OpenSearch unavailable, transaction logging disabled: %v", err)
		osClient = nil
	}

	var osLogger *opensearch.Logger
	var txLogger provider.TransactionLogger
	if osClient != nil && osClient.IsEnabled() {
		osLogger = opensearch.NewLogger(osClient)
		txLogger = osLogger
	}
	logger.InitGlobalLogger(osLogger)

	providerConfig := config.NewProviderConfig(appConfig.DBPath)
	defer providerConfig.Close()

	paymentService := provider.NewPaymentService(txLogger)
	registerProvidersFromEnv(paymentService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.IPWhitelistMiddleware())
	r.Use(middle.RateLimitMiddleware(middle.NewRateLimiter()))
	r.Use(middle.RequestValidationMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Routes(r, paymentService, providerConfig, osLogger)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})

	server := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", logger.LogContext{Fields: map[string]any{"port": appConfig.Port}})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}

// registerProvidersFromEnv wires every gateway whose credentials are present
// in the environment. The first registered gateway becomes the default.
func registerProvidersFromEnv(svc *provider.PaymentService) {
	if os.Getenv("PAYFLOW_USER") != "" {
		conf := map[string]string{
			"partner":     config.GetEnv("PAYFLOW_PARTNER", "PayPal"),
			"vendor":      config.GetEnv("PAYFLOW_VENDOR", os.Getenv("PAYFLOW_USER")),
			"user":        os.Getenv("PAYFLOW_USER"),
			"password":    os.Getenv("PAYFLOW_PASSWORD"),
			"environment": config.GetEnv("PAYFLOW_ENVIRONMENT", "sandbox"),
		}
		if err := svc.AddProvider("payflow", conf); err != nil {
			log.Printf("Skipping payflow registration: %v", err)
		}
	}

	if os.Getenv("SECURENET_ID") != "" {
		conf := map[string]string{
			"securenetId": os.Getenv("SECURENET_ID"),
			"secureKey":   os.Getenv("SECURENET_KEY"),
			"environment": config.GetEnv("SECURENET_ENVIRONMENT", "sandbox"),
		}
		if err := svc.AddProvider("securenet", conf); err != nil {
			log.Printf("Skipping securenet registration: %v", err)
		}
	}

	for _, name := range []string{"payflow", "securenet"} {
		if _, err := svc.GetProvider(name); err == nil {
			_ = svc.SetDefaultProvider(name)
			break
		}
	}
}
