package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/infra/response"
	"github.com/paywire/paywire/provider"
)

// ConfigHandler handles tenant credential HTTP requests
type ConfigHandler struct {
	providerConfig *config.ProviderConfig
	paymentService *provider.PaymentService
	validate       *validator.Validate
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(providerConfig *config.ProviderConfig, paymentService *provider.PaymentService, validate *validator.Validate) *ConfigHandler {
	return &ConfigHandler{
		providerConfig: providerConfig,
		paymentService: paymentService,
		validate:       validate,
	}
}

// SetTenantConfigRequest carries credentials for one dialect.
type SetTenantConfigRequest struct {
	Provider string            `json:"provider" validate:"required"`
	Config   map[string]string `json:"config" validate:"required"`
}

// SetTenantConfig stores gateway credentials for a tenant and registers the
// provider under a tenant-qualified name.
func (h *ConfigHandler) SetTenantConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		response.Error(w, http.StatusBadRequest, "X-Tenant-ID header is required", nil)
		return
	}

	var req SetTenantConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := strings.ToLower(req.Provider)
	if _, err := provider.Get(providerName); err != nil {
		response.Error(w, http.StatusBadRequest, "Unknown provider", err)
		return
	}

	if req.Config["environment"] == "" {
		req.Config["environment"] = "sandbox"
	}

	if err := h.providerConfig.SetTenantConfig(tenantID, providerName, req.Config); err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to store configuration", err)
		return
	}

	// Tenant-qualified registration keeps per-tenant credentials apart in
	// the shared payment service.
	tenantProviderName := strings.ToUpper(tenantID) + "_" + providerName
	if err := h.paymentService.AddProviderAs(providerName, tenantProviderName, req.Config); err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to register provider", err)
		return
	}

	response.Success(w, http.StatusOK, "Configuration updated", map[string]any{
		"tenantId": tenantID,
		"provider": providerName,
	})
}

// GetTenantConfig returns the stored configuration with secrets masked
func (h *ConfigHandler) GetTenantConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		response.Error(w, http.StatusBadRequest, "X-Tenant-ID header is required", nil)
		return
	}

	providerName := r.URL.Query().Get("provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "provider query parameter is required", nil)
		return
	}

	conf, err := h.providerConfig.GetTenantConfig(tenantID, providerName)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Configuration not found", err)
		return
	}

	publicConfig := make(map[string]string, len(conf))
	for key, value := range conf {
		if isSensitiveConfigKey(key) {
			publicConfig[key] = maskSecret(value)
		} else {
			publicConfig[key] = value
		}
	}

	response.Success(w, http.StatusOK, "Configuration retrieved", map[string]any{
		"tenantId": tenantID,
		"provider": providerName,
		"config":   publicConfig,
	})
}

// DeleteTenantConfig removes the stored configuration for a tenant provider
func (h *ConfigHandler) DeleteTenantConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		response.Error(w, http.StatusBadRequest, "X-Tenant-ID header is required", nil)
		return
	}

	providerName := r.URL.Query().Get("provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "provider query parameter is required", nil)
		return
	}

	if err := h.providerConfig.DeleteTenantConfig(tenantID, providerName); err != nil {
		response.Error(w, http.StatusNotFound, "Failed to delete configuration", err)
		return
	}

	response.Success(w, http.StatusOK, "Configuration deleted", map[string]any{
		"tenantId": tenantID,
		"provider": providerName,
	})
}

// GetStats returns configuration store statistics
func (h *ConfigHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.providerConfig.GetStats()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get statistics", err)
		return
	}

	response.Success(w, http.StatusOK, "Statistics retrieved", stats)
}

func isSensitiveConfigKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "key") ||
		strings.Contains(lower, "password") ||
		strings.Contains(lower, "secret")
}

func maskSecret(value string) string {
	if len(value) > 8 {
		return value[:4] + "****" + value[len(value)-4:]
	}
	return "****"
}
