package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/paywire/paywire/infra/middle"
	"github.com/paywire/paywire/infra/response"
	"github.com/paywire/paywire/provider"
)

// PaymentServiceInterface defines the interface for gateway operations
type PaymentServiceInterface interface {
	Execute(ctx context.Context, providerName string, req provider.TransactionRequest) (*provider.Result, error)
	ProviderNames() []string
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// ProcessTransaction handles transaction requests. The action is carried in
// the body; deep per-action validation happens in the service layer before
// the dialect encodes anything.
func (h *PaymentHandler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validateEnvelope(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	if req.Options.IP == "" {
		req.Options.IP = middle.GetClientIP(r)
	}

	providerName := chi.URLParam(r, "provider")

	result, err := h.paymentService.Execute(ctx, providerName, req)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction processed", result)
}

// GetTransactionStatus handles status inquiry requests
func (h *PaymentHandler) GetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	reference := chi.URLParam(r, "reference")

	if reference == "" {
		response.Error(w, http.StatusBadRequest, "Missing transaction reference", nil)
		return
	}

	result, err := h.paymentService.Execute(ctx, providerName, provider.TransactionRequest{
		Action:    provider.ActionInquiry,
		Reference: reference,
	})
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction status retrieved", result)
}

// VoidTransaction handles void requests for referenced transactions
func (h *PaymentHandler) VoidTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")
	reference := chi.URLParam(r, "reference")

	if reference == "" {
		response.Error(w, http.StatusBadRequest, "Missing transaction reference", nil)
		return
	}

	// Body is optional for voids, an order id may ride along.
	var req struct {
		OrderID string `json:"orderId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := h.paymentService.Execute(ctx, providerName, provider.TransactionRequest{
		Action:    provider.ActionVoid,
		Reference: reference,
		Options:   provider.TransactionOptions{OrderID: req.OrderID},
	})
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction voided", result)
}

// RefundTransaction handles referenced credit requests
func (h *PaymentHandler) RefundTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	var req struct {
		Reference string `json:"reference" validate:"required"`
		Amount    int64  `json:"amount" validate:"required,gt=0"`
		Currency  string `json:"currency" validate:"omitempty,len=3,alpha"`
		OrderID   string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	result, err := h.paymentService.Execute(ctx, providerName, provider.TransactionRequest{
		Action:    provider.ActionCredit,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: req.Reference,
		Options:   provider.TransactionOptions{OrderID: req.OrderID},
	})
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction refunded", result)
}

// ProcessRecurring handles recurring profile operations
func (h *PaymentHandler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if !provider.IsRecurringAction(req.Action) {
		response.Error(w, http.StatusBadRequest, "Action must be a recurring operation", nil)
		return
	}

	providerName := chi.URLParam(r, "provider")

	result, err := h.paymentService.Execute(ctx, providerName, req)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Recurring operation processed", result)
}

// StoreAccount handles vault store requests
func (h *PaymentHandler) StoreAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	var req provider.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	req.Action = provider.ActionStore

	result, err := h.paymentService.Execute(ctx, providerName, req)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Account stored", result)
}

// UnstoreAccount handles vault delete requests
func (h *PaymentHandler) UnstoreAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	var req provider.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	req.Action = provider.ActionUnstore

	result, err := h.paymentService.Execute(ctx, providerName, req)
	if err != nil {
		writeTransactionError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Account removed", result)
}

// ListProviders returns the registered dialects and their required
// configuration fields.
func (h *PaymentHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	names := provider.DefaultRegistry.Names()

	providers := make(map[string]any, len(names))
	for _, name := range names {
		gw, err := provider.CreateProvider(name)
		if err != nil {
			continue
		}
		providers[name] = gw.GetRequiredConfig("sandbox")
	}

	response.Success(w, http.StatusOK, "Providers retrieved", map[string]any{
		"configured": h.paymentService.ProviderNames(),
		"available":  providers,
	})
}

// validateEnvelope checks the top-level request fields. Per-action
// requirements are the service layer's job.
func (h *PaymentHandler) validateEnvelope(req provider.TransactionRequest) error {
	if err := h.validate.Var(string(req.Action), "required"); err != nil {
		return err
	}
	if err := h.validate.Var(req.Currency, "omitempty,len=3,alpha"); err != nil {
		return err
	}
	return nil
}

// writeTransactionError maps the error taxonomy to HTTP status codes. A
// gateway decline is not an error and never reaches this path.
func writeTransactionError(w http.ResponseWriter, err error) {
	switch {
	case provider.IsValidationError(err):
		response.Error(w, http.StatusBadRequest, "Validation error", err)
	case provider.IsTransportError(err):
		response.Error(w, http.StatusBadGateway, "Gateway unreachable", err)
	case provider.IsParseError(err):
		response.Error(w, http.StatusBadGateway, "Gateway response unreadable", err)
	default:
		response.Error(w, http.StatusInternalServerError, "Transaction failed", err)
	}
}
