package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TransactionLogger records request/response pairs for diagnostics. The
// zero implementation is a no-op; infra/opensearch supplies the real sink.
type TransactionLogger interface {
	LogRequest(ctx context.Context, providerName string, action Action, req TransactionRequest) (string, error)
	LogResponse(ctx context.Context, logID string, result *Result, processingMs int64) error
	LogError(ctx context.Context, logID string, code, message string, processingMs int64) error
}

// PaymentService multiplexes gateway operations across configured dialects.
// Providers are registered once at startup and treated as read-only
// afterwards; individual calls share no mutable state.
type PaymentService struct {
	providers       map[string]GatewayProvider
	defaultProvider string
	logger          TransactionLogger
	mu              sync.RWMutex
}

// NewPaymentService creates a new payment service. logger may be nil.
func NewPaymentService(logger TransactionLogger) *PaymentService {
	return &PaymentService{
		providers: make(map[string]GatewayProvider),
		logger:    logger,
	}
}

// AddProvider creates, validates and initializes a dialect from the default
// registry and makes it available under name.
func (s *PaymentService) AddProvider(name string, conf map[string]string) error {
	return s.AddProviderAs(name, name, conf)
}

// AddProviderAs creates a dialect from the baseName registry factory and
// makes it available under alias. Tenant-qualified registrations
// (APP1_payflow) use this so per-tenant credentials stay apart while the
// registry only ever knows the base dialect names.
func (s *PaymentService) AddProviderAs(baseName, alias string, conf map[string]string) error {
	gw, err := CreateProvider(baseName)
	if err != nil {
		return err
	}
	if err := gw.ValidateConfig(conf); err != nil {
		return fmt.Errorf("invalid configuration for provider %s: %w", alias, err)
	}
	if err := gw.Initialize(conf); err != nil {
		return fmt.Errorf("failed to initialize provider %s: %w", alias, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[alias] = gw
	return nil
}

// SetDefaultProvider sets the provider used when a request names none.
func (s *PaymentService) SetDefaultProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[name]; !ok {
		return fmt.Errorf("provider %s is not configured", name)
	}
	s.defaultProvider = name
	return nil
}

// GetProvider returns the configured dialect by name, or the default when
// name is empty.
func (s *PaymentService) GetProvider(name string) (GatewayProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.defaultProvider
	}
	if name == "" {
		return nil, fmt.Errorf("no provider specified and no default provider set")
	}

	gw, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s is not configured", name)
	}
	return gw, nil
}

// ProviderNames returns the names of all configured providers.
func (s *PaymentService) ProviderNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// Execute runs one gateway operation on the named provider. Preconditions
// are checked before the dialect encodes anything, so caller errors never
// cost a network round trip. The request/response pair is logged when a
// logger is configured.
func (s *PaymentService) Execute(ctx context.Context, providerName string, req TransactionRequest) (*Result, error) {
	gw, err := s.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	var logID string
	if s.logger != nil {
		logID, _ = s.logger.LogRequest(ctx, providerName, req.Action, req)
	}

	startTime := time.Now()
	result, err := s.dispatch(ctx, gw, req)
	processingMs := time.Since(startTime).Milliseconds()

	if s.logger != nil && logID != "" {
		if err != nil {
			_ = s.logger.LogError(ctx, logID, "PROVIDER_ERROR", err.Error(), processingMs)
		} else {
			_ = s.logger.LogResponse(ctx, logID, result, processingMs)
		}
	}

	return result, err
}

func (s *PaymentService) dispatch(ctx context.Context, gw GatewayProvider, req TransactionRequest) (*Result, error) {
	switch req.Action {
	case ActionAuthorize:
		return gw.Authorize(ctx, req)
	case ActionPurchase:
		return gw.Purchase(ctx, req)
	case ActionCapture:
		return gw.Capture(ctx, req)
	case ActionCredit:
		return gw.Credit(ctx, req)
	case ActionVoid:
		return gw.Void(ctx, req)
	case ActionInquiry:
		return gw.Inquiry(ctx, req)
	case ActionStore:
		return gw.Store(ctx, req)
	case ActionUnstore:
		return gw.Unstore(ctx, req)
	default:
		if IsRecurringAction(req.Action) {
			return gw.Recurring(ctx, req)
		}
		return nil, NewValidationError("action", fmt.Sprintf("unknown action %q", req.Action))
	}
}
