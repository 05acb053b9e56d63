package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/paywire/paywire/infra/config"
	"github.com/paywire/paywire/provider"
)

func newHealthHandler(t *testing.T) *HealthHandler {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	providerConfig := config.NewProviderConfig(dbPath)
	t.Cleanup(func() { providerConfig.Close() })

	return NewHealthHandler(provider.NewPaymentService(nil), providerConfig)
}

func TestHealthHandler_CheckHealth(t *testing.T) {
	handler := newHealthHandler(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.CheckHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object in response")
	}
	if data["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", data["status"])
	}
	if data["uptime"] == "" {
		t.Error("Expected uptime to be set")
	}

	services, ok := data["services"].(map[string]any)
	if !ok {
		t.Fatal("Expected services in response")
	}
	for _, name := range []string{"payment_service", "provider_config"} {
		svc, ok := services[name].(map[string]any)
		if !ok {
			t.Fatalf("Expected %s service entry", name)
		}
		if svc["healthy"] != true {
			t.Errorf("Expected %s to be healthy, got %v", name, svc["healthy"])
		}
	}
}

func TestHealthHandler_CheckHealth_MissingServices(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.CheckHealth(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 when services are missing, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["success"] != false {
		t.Error("Expected success to be false for unhealthy status")
	}
}

func TestHealthHandler_ProvidersReported(t *testing.T) {
	handler := newHealthHandler(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.CheckHealth(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	data := resp["data"].(map[string]any)
	providers, ok := data["providers"].(map[string]any)
	if !ok {
		t.Fatal("Expected providers in response")
	}
	if _, ok := providers["payflow"]; !ok {
		t.Errorf("Expected payflow to be reported, got %v", providers)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
