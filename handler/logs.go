package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paywire/paywire/infra/middle"
	"github.com/paywire/paywire/infra/opensearch"
	"github.com/paywire/paywire/infra/response"
)

// LoggerInterface defines the interface for log queries
type LoggerInterface interface {
	SearchLogs(ctx context.Context, tenantID, provider string, query map[string]any) ([]opensearch.TransactionLog, error)
	GetTransactionLogs(ctx context.Context, tenantID, provider, reference string) ([]opensearch.TransactionLog, error)
	GetRecentErrorLogs(ctx context.Context, tenantID, provider string, hours int) ([]opensearch.TransactionLog, error)
}

// LogsHandler handles log query HTTP requests
type LogsHandler struct {
	logger LoggerInterface
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(logger LoggerInterface) *LogsHandler {
	return &LogsHandler{logger: logger}
}

// ListLogs lists transaction logs filtered by tenant and provider
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tenantID := middle.GetTenantIDFromContext(r.Context())

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	query := map[string]any{"match_all": map[string]any{}}

	if action := r.URL.Query().Get("action"); action != "" {
		query = map[string]any{
			"match": map[string]any{"action": action},
		}
	}
	if errorsOnly := r.URL.Query().Get("errors"); errorsOnly == "true" {
		query = map[string]any{
			"term": map[string]any{"success": false},
		}
	}

	logs, err := h.logger.SearchLogs(ctx, tenantID, providerName, query)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to query logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Logs retrieved", map[string]any{
		"provider": providerName,
		"count":    len(logs),
		"logs":     logs,
	})
}

// GetTransactionLogs returns the log entries for one gateway reference
func (h *LogsHandler) GetTransactionLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tenantID := middle.GetTenantIDFromContext(r.Context())

	providerName := chi.URLParam(r, "provider")
	reference := chi.URLParam(r, "reference")
	if providerName == "" || reference == "" {
		response.Error(w, http.StatusBadRequest, "Provider and reference parameters are required", nil)
		return
	}

	logs, err := h.logger.GetTransactionLogs(ctx, tenantID, providerName, reference)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to query logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction logs retrieved", map[string]any{
		"reference": reference,
		"count":     len(logs),
		"logs":      logs,
	})
}

// GetErrorLogs returns recent failed operations for a provider
func (h *LogsHandler) GetErrorLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tenantID := middle.GetTenantIDFromContext(r.Context())

	providerName := chi.URLParam(r, "provider")
	if providerName == "" {
		response.Error(w, http.StatusBadRequest, "Provider parameter is required", nil)
		return
	}

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 {
			hours = h
		}
	}

	logs, err := h.logger.GetRecentErrorLogs(ctx, tenantID, providerName, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to query error logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Error logs retrieved", map[string]any{
		"provider": providerName,
		"hours":    hours,
		"count":    len(logs),
		"logs":     logs,
	})
}
