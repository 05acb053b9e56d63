package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClientConfig represents configuration for the dialect HTTP client.
type HTTPClientConfig struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
	DefaultHeaders     map[string]string
}

// HTTPRequest represents one outbound gateway request.
type HTTPRequest struct {
	Method      string
	Endpoint    string
	Headers     map[string]string
	Body        []byte
	QueryParams map[string]string
}

// HTTPResponse represents a gateway response.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ProviderHTTPClient submits wire documents to a processor endpoint. It owns
// TLS and timeout policy; encoding and decoding stay in the dialects. Any
// network or HTTP-level failure comes back as a TransportError, untouched by
// retry logic.
type ProviderHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewProviderHTTPClient creates a new dialect HTTP client.
func NewProviderHTTPClient(config *HTTPClientConfig) *ProviderHTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	return &ProviderHTTPClient{
		config: config,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

// SendXML posts an XML document and returns the raw response. The
// Content-Type and Content-Length headers are part of the processor
// contract and always set here.
func (c *ProviderHTTPClient) SendXML(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	fullURL := c.buildURL(req.Endpoint, req.QueryParams)

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("failed to create HTTP request: %w", err)}
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Content-Type", "text/xml")
	httpReq.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, &TransportError{Cause: fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))}
	}

	return response, nil
}

func joinURL(base, endpoint string) string {
	if strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/") {
		return base + endpoint[1:]
	}
	if !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/") {
		return base + "/" + endpoint
	}
	return base + endpoint
}

// buildURL constructs the full URL with query parameters.
func (c *ProviderHTTPClient) buildURL(endpoint string, queryParams map[string]string) string {
	fullURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		fullURL = joinURL(c.config.BaseURL, endpoint)
	}
	if endpoint == "" {
		fullURL = c.config.BaseURL
	}

	if len(queryParams) > 0 {
		u, err := url.Parse(fullURL)
		if err != nil {
			return fullURL
		}
		q := u.Query()
		for key, value := range queryParams {
			q.Set(key, value)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	return fullURL
}

// CreateHTTPClientConfig creates a standard HTTP client configuration for
// dialects. Sandbox endpoints frequently carry certificates that do not
// verify, so verification is skipped outside production.
func CreateHTTPClientConfig(baseURL string, isProduction bool) *HTTPClientConfig {
	return &HTTPClientConfig{
		BaseURL:            baseURL,
		Timeout:            30 * time.Second,
		InsecureSkipVerify: !isProduction,
		DefaultHeaders: map[string]string{
			"User-Agent": "paywire/1.0",
		},
	}
}
