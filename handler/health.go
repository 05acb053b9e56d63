package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/response"
	"github.com/paywire/paywire/provider"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	paymentService *provider.PaymentService
	providerConfig *config.ProviderConfig
	startTime      time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                     `json:"status"`
	Version     string                     `json:"version"`
	Timestamp   time.Time                  `json:"timestamp"`
	Uptime      string                     `json:"uptime"`
	Environment string                     `json:"environment"`
	Providers   map[string]*ProviderHealth `json:"providers"`
	System      *SystemHealth              `json:"system"`
	Services    map[string]*ServiceHealth  `json:"services"`
}

// ProviderHealth represents payment dialect health
type ProviderHealth struct {
	Status     string `json:"status"`
	Available  bool   `json:"available"`
	Registered bool   `json:"registered"`
	LastCheck  string `json:"last_check"`
	Error      string `json:"error,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	GoRoutines int           `json:"goroutines"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc      string `json:"alloc"`
	TotalAlloc string `json:"total_alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string `json:"status"`
	Healthy     bool   `json:"healthy"`
	LastCheck   string `json:"last_check"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(paymentService *provider.PaymentService, providerConfig *config.ProviderConfig) *HealthHandler {
	return &HealthHandler{
		paymentService: paymentService,
		providerConfig: providerConfig,
		startTime:      time.Now(),
	}
}

// CheckHealth performs health checks across providers and services
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).String(),
		Environment: config.GetEnv("ENVIRONMENT", "development"),
		Providers:   h.checkProvidersHealth(),
		System:      h.checkSystemHealth(),
		Services:    h.checkServicesHealth(),
	}

	health.Status = h.determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func (h *HealthHandler) checkProvidersHealth() map[string]*ProviderHealth {
	providers := make(map[string]*ProviderHealth)

	for _, name := range provider.DefaultRegistry.Names() {
		health := &ProviderHealth{
			Registered: true,
			Available:  true,
			Status:     "healthy",
			LastCheck:  time.Now().UTC().Format(time.RFC3339),
		}
		if _, err := provider.Get(name); err != nil {
			health.Status = "not_available"
			health.Available = false
			health.Registered = false
			health.Error = err.Error()
		}
		providers[name] = health
	}

	return providers
}

func (h *HealthHandler) checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:      formatBytes(memStats.Alloc),
			TotalAlloc: formatBytes(memStats.TotalAlloc),
			Sys:        formatBytes(memStats.Sys),
			GCRuns:     memStats.NumGC,
		},
		GoRoutines: runtime.NumGoroutine(),
	}
}

func (h *HealthHandler) checkServicesHealth() map[string]*ServiceHealth {
	services := make(map[string]*ServiceHealth)
	now := time.Now().UTC().Format(time.RFC3339)

	paymentHealth := &ServiceHealth{LastCheck: now}
	if h.paymentService != nil {
		paymentHealth.Status = "healthy"
		paymentHealth.Healthy = true
		paymentHealth.Description = "Gateway transaction service"
	} else {
		paymentHealth.Status = "unhealthy"
		paymentHealth.Error = "Payment service not initialized"
	}
	services["payment_service"] = paymentHealth

	configHealth := &ServiceHealth{LastCheck: now}
	if h.providerConfig != nil {
		configHealth.Status = "healthy"
		configHealth.Healthy = true
		configHealth.Description = "Tenant credential store"
	} else {
		configHealth.Status = "unhealthy"
		configHealth.Error = "Provider config service not initialized"
	}
	services["provider_config"] = configHealth

	return services
}

func (h *HealthHandler) determineOverallStatus(health *HealthStatus) string {
	for _, service := range health.Services {
		if !service.Healthy {
			return "unhealthy"
		}
	}

	hasHealthyProvider := false
	for _, p := range health.Providers {
		if p.Status == "healthy" {
			hasHealthyProvider = true
			break
		}
	}
	if !hasHealthyProvider && len(health.Providers) > 0 {
		return "unhealthy"
	}

	return "healthy"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
