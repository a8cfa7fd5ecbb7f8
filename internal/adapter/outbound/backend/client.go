// Package backend is the HTTP/JSON client for the collaborator service: the
// identity endpoint, the access policy endpoint, prices, logout and entities.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sentinel-Gate/appgate/internal/telemetry"
)

// maxErrorBody bounds the response body kept in an APIError.
const maxErrorBody = 512

// Client talks to the collaborator backend. All requests are credentialed:
// cookies set by the backend are kept in the client's jar and a session
// token handed over by the login window is sent as a bearer token.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	tracer     trace.Tracer

	mu           sync.RWMutex
	sessionToken string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Jar:     jar,
		}
	}
	if c.tracer == nil {
		c.tracer = telemetry.NoopTracer()
	}

	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSessionToken replaces the bearer session token. An empty token clears it.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

// SessionToken returns the current bearer session token.
func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

// doRequest performs an HTTP request against the backend and decodes a JSON
// response into result when result is non-nil.
func (c *Client) doRequest(ctx context.Context, endpoint, method, path string, body any, result any) (err error) {
	ctx, span := c.tracer.Start(ctx, "backend."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.ObserveBackend(endpoint, status, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.SessionToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	status = strconv.Itoa(httpResp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		text := string(respBody)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: httpResp.StatusCode,
			Body:       strings.TrimSpace(text),
		}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
