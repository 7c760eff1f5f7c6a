// Package client is the boundary between the editor and the remote workflow
// execution engine. It turns graph snapshots into run requests and parses the
// engine's responses. Calls are never retried; a failed call surfaces to the
// caller immediately.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	healthPath   = "/health"
	executePath  = "/api/execute"
	streamPath   = "/api/execute/stream"
	validatePath = "/api/execute/validate"
)

// Client issues requests to the execution engine.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured timeout
// is not applied to a replacement client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("system", "engine")
	}
}

// New creates a Client for the engine described by cfg. cfg must be finalized.
func New(cfg *Config, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the engine address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthCheck probes the engine's status endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ExecuteWorkflow submits req for a complete run and returns every node result
// at once. Per-node failures are reported inside the response, not as an error.
func (c *Client) ExecuteWorkflow(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	var resp ExecuteResponse
	if err := c.do(ctx, http.MethodPost, executePath, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info(
		"workflow executed",
		"success", resp.Success,
		"results", len(resp.Results),
		"total_duration_ms", resp.TotalDuration,
	)
	return &resp, nil
}

// ValidateWorkflow asks the engine to check req's graph without running it.
func (c *Client) ValidateWorkflow(ctx context.Context, req *ExecuteRequest) (*ValidationResult, error) {
	var result ValidationResult
	if err := c.do(ctx, http.MethodPost, validatePath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// send issues the request and returns the response when the engine reports
// success. Non-success responses are consumed and converted to *APIError.
func (c *Client) send(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("engine request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := parseAPIError(resp)
		c.logger.Warn(
			"engine returned error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return nil, apiErr
	}

	return resp, nil
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err == nil && json.Unmarshal(data, apiErr) == nil && apiErr.Message != "" {
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("HTTP error %d", resp.StatusCode)
	apiErr.Code = ""
	return apiErr
}
