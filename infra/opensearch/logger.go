package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/paywire/paywire/provider"
)

// TransactionLog is one gateway operation as stored in OpenSearch. Amount is
// in minor currency units; card and bank data never reach this struct.
type TransactionLog struct {
	Timestamp        time.Time `json:"timestamp"`
	TenantID         string    `json:"tenant_id,omitempty"`
	Provider         string    `json:"provider"`
	Action           string    `json:"action"`
	RequestID        string    `json:"request_id"`
	Amount           int64     `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Reference        string    `json:"reference,omitempty"`
	OrderID          string    `json:"order_id,omitempty"`
	TenderKind       string    `json:"tender_kind,omitempty"`
	Success          bool      `json:"success"`
	Authorization    string    `json:"authorization,omitempty"`
	Message          string    `json:"message,omitempty"`
	Duplicate        bool      `json:"duplicate,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	Error            ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger writes transaction logs to OpenSearch. It implements
// provider.TransactionLogger: the request is indexed up front, then the
// response or error is folded into the same document by log id.
type Logger struct {
	client *Client

	// logID -> index name, needed to address the document on update.
	mu      sync.Mutex
	indices map[string]string
}

// NewLogger creates a new OpenSearch transaction logger.
func NewLogger(client *Client) *Logger {
	return &Logger{
		client:  client,
		indices: make(map[string]string),
	}
}

// TenantIDKey is the context key carrying the tenant id into log entries.
type contextKey string

const TenantIDKey contextKey = "tenantID"

func tenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TenantIDKey).(string); ok {
		return v
	}
	return ""
}

// LogRequest indexes the request side of one gateway operation and returns
// the log id the response will be recorded under.
func (l *Logger) LogRequest(ctx context.Context, providerName string, action provider.Action, req provider.TransactionRequest) (string, error) {
	if !l.client.IsEnabled() {
		return "", nil
	}

	logID := uuid.New().String()
	tenantID := tenantFromContext(ctx)
	indexName := l.client.GetLogIndexName(tenantID, providerName)

	entry := TransactionLog{
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
		Provider:  providerName,
		Action:    string(action),
		RequestID: logID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: req.Reference,
		OrderID:   req.Options.OrderID,
	}
	if req.Tender != nil {
		entry.TenderKind = string(req.Tender.Kind)
	}

	logJSON, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log: %w", err)
	}

	indexReq := opensearchapi.IndexRequest{
		Index:      indexName,
		DocumentID: logID,
		Body:       bytes.NewReader(sanitizeDocument(logJSON)),
	}

	res, err := indexReq.Do(ctx, l.client.GetClient())
	if err != nil {
		return "", fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("opensearch error: %s", res.String())
	}

	l.mu.Lock()
	l.indices[logID] = indexName
	l.mu.Unlock()

	return logID, nil
}

// LogResponse folds the normalized result into the request document.
func (l *Logger) LogResponse(ctx context.Context, logID string, result *provider.Result, processingMs int64) error {
	if !l.client.IsEnabled() || logID == "" {
		return nil
	}

	update := map[string]any{
		"processing_time_ms": processingMs,
	}
	if result != nil {
		update["success"] = result.Success
		update["authorization"] = result.Authorization
		update["message"] = result.Message
		update["duplicate"] = result.Duplicate
	}

	return l.updateDocument(ctx, logID, update)
}

// LogError folds a transport or validation failure into the request document.
func (l *Logger) LogError(ctx context.Context, logID string, code, message string, processingMs int64) error {
	if !l.client.IsEnabled() || logID == "" {
		return nil
	}

	return l.updateDocument(ctx, logID, map[string]any{
		"processing_time_ms": processingMs,
		"success":            false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func (l *Logger) updateDocument(ctx context.Context, logID string, doc map[string]any) error {
	l.mu.Lock()
	indexName, ok := l.indices[logID]
	if ok {
		delete(l.indices, logID)
	}
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown log id: %s", logID)
	}

	body, err := json.Marshal(map[string]any{"doc": doc})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	req := opensearchapi.UpdateRequest{
		Index:      indexName,
		DocumentID: logID,
		Body:       bytes.NewReader(sanitizeDocument(body)),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to update log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// SearchLogs searches for transaction logs based on criteria
func (l *Logger) SearchLogs(ctx context.Context, tenantID, providerName string, query map[string]any) ([]TransactionLog, error) {
	if !l.client.IsEnabled() {
		return nil, fmt.Errorf("logging is disabled")
	}

	indexName := l.client.GetLogIndexName(tenantID, providerName)

	searchQuery := map[string]any{
		"query": query,
		"sort": []map[string]any{
			{"timestamp": map[string]string{"order": "desc"}},
		},
		"size": 100,
	}

	queryJSON, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{indexName},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch search error: %s", res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source TransactionLog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	logs := make([]TransactionLog, len(searchResult.Hits.Hits))
	for i, hit := range searchResult.Hits.Hits {
		logs[i] = hit.Source
	}

	return logs, nil
}

// GetTransactionLogs retrieves logs for a specific gateway reference.
func (l *Logger) GetTransactionLogs(ctx context.Context, tenantID, providerName, reference string) ([]TransactionLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"should": []map[string]any{
				{"match": map[string]any{"reference": reference}},
				{"match": map[string]any{"authorization": reference}},
			},
		},
	}

	return l.SearchLogs(ctx, tenantID, providerName, query)
}

// GetRecentErrorLogs retrieves recent failed operations for a provider.
func (l *Logger) GetRecentErrorLogs(ctx context.Context, tenantID, providerName string, hours int) ([]TransactionLog, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{
					"range": map[string]any{
						"timestamp": map[string]any{
							"gte": fmt.Sprintf("now-%dh", hours),
						},
					},
				},
				{
					"term": map[string]any{
						"success": false,
					},
				},
			},
		},
	}

	return l.SearchLogs(ctx, tenantID, providerName, query)
}

// LogSystemEvent indexes a system log entry outside the per-provider
// transaction indices.
func (l *Logger) LogSystemEvent(ctx context.Context, entry any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	logJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal system log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: "paywire-system-logs",
		Body:  bytes.NewReader(logJSON),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index system log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch system log error: %s", res.String())
	}

	return nil
}

// sensitiveFields are request fields that must never reach a log sink.
var sensitiveFields = []string{
	"number", "cardNumber", "card_number", "cvv", "cvc", "verificationValue",
	"accountNumber", "account_number", "routingNumber", "routing_number",
	"password", "secureKey", "secretKey", "secret_key", "apiKey", "api_key", "token",
	"x-api-key",
}

// sanitizeDocument redacts a marshaled document before it is indexed.
// Gateway messages can echo request fields back verbatim, so every document
// passes through here, not just known-sensitive ones.
func sanitizeDocument(doc []byte) []byte {
	return []byte(SanitizeForLog(string(doc)))
}

// SanitizeForLog removes sensitive information from data before logging
func SanitizeForLog(data string) string {
	result := data
	for _, field := range sensitiveFields {
		patterns := []string{
			fmt.Sprintf(`"%s"\s*:\s*"[^"]*"`, field),
			fmt.Sprintf(`%s=\w+`, field),
		}

		for _, pattern := range patterns {
			re := regexp.MustCompile(pattern)
			result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, field))
		}
	}

	return result
}
