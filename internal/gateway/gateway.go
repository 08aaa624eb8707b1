// Package gateway executes requests against the analysis service and
// classifies every outcome exactly once: success, session expiry, or a
// request failure carrying a user-facing message.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/akrishnanDG/migration-analyzer/internal/credential"
	"github.com/akrishnanDG/migration-analyzer/pkg/config"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrSessionExpired is returned when the service rejects the credential.
// The credential store has already been cleared when a caller sees it.
var ErrSessionExpired = errors.New("session expired")

// RequestError is a non-success outcome other than session expiry.
// StatusCode is 0 for transport failures (unreachable service, timeout,
// malformed response body).
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transport reports whether the failure happened below HTTP
func (e *RequestError) Transport() bool {
	return e.StatusCode == 0
}

// operation names a call and the message shown when the service gives none
type operation struct {
	name     string
	fallback string
}

var (
	opRegister     = operation{"register", "Registration failed"}
	opLogin        = operation{"login", "Login failed"}
	opMe           = operation{"me", "Failed to get user info"}
	opAnalyze      = operation{"analyze", "Analysis failed"}
	opGetReport    = operation{"get_report", "Failed to fetch report"}
	opListReports  = operation{"list_reports", "Failed to fetch reports"}
	opDeleteReport = operation{"delete_report", "Failed to delete report"}
)

// Client talks to the analysis service
type Client struct {
	baseURL     string
	client      *http.Client
	rateLimiter *rate.Limiter
	creds       credential.Store
	userAgent   string
}

// New creates a new Client. The HTTP timeout is cfg.API.Timeout.
func New(cfg *config.Config, creds credential.Store) (*Client, error) {
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	baseURL := strings.TrimSuffix(cfg.API.BaseURL, "/")

	return &Client{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: cfg.API.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.API.RateLimit), 1),
		creds:       creds,
		userAgent:   cfg.API.UserAgent,
	}, nil
}

// request describes one call to the service
type request struct {
	op            operation
	method        string
	path          string
	body          []byte
	contentType   string
	authenticated bool
}

// do executes req and decodes a successful body into out (when non-nil).
// It never retries.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &RequestError{Op: req.op.name, Message: req.op.fallback, Err: err}
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return &RequestError{Op: req.op.name, Message: req.op.fallback, Err: err}
	}

	requestID := uuid.New().String()
	c.setHeaders(httpReq, req, requestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		slog.Debug("request failed", "op", req.op.name, "request_id", requestID, "error", err)
		return &RequestError{Op: req.op.name, Message: req.op.fallback, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: req.op.name, Message: req.op.fallback, Err: err}
	}

	slog.Debug("request completed",
		"op", req.op.name,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	if resp.StatusCode == http.StatusUnauthorized && req.authenticated {
		if err := c.creds.Clear(); err != nil {
			slog.Warn("failed to clear credentials", "error", err)
		}
		slog.Info("session expired", "op", req.op.name, "request_id", requestID)
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Op:         req.op.name,
			StatusCode: resp.StatusCode,
			Message:    detailMessage(respBody, req.op.fallback),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{
			Op:      req.op.name,
			Message: req.op.fallback,
			Err:     fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

func (c *Client) setHeaders(httpReq *http.Request, req request, requestID string) {
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	// The service decides whether a missing credential is acceptable
	if token, ok := c.creds.Get(); ok && req.authenticated {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
}

// detailMessage extracts the service's "detail" field. FastAPI style
// validation errors carry a list of {msg} objects instead of a string.
func detailMessage(body []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		if strings.TrimSpace(detail) == "" {
			return fallback
		}
		return detail
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		var msgs []string
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallback
}
