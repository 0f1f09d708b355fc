// Package apiclient is the typed HTTP client for the palette API, used by
// palctl. One call per user action; no retries — a quota 429 or upstream
// hiccup is surfaced once and the user resubmits.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chromabiz/palette-api/internal/httputil"
	"github.com/chromabiz/palette-api/internal/palette"
)

// APIError is any non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Sprintf("%s (%s)", e.Detail, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s (status %d)", e.Detail, e.StatusCode)
}

// QuotaExceeded reports whether the server answered with the daily-limit
// 429.
func (e *APIError) QuotaExceeded() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client talks to one palette API server.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) GeneratePalettes(ctx context.Context, profile palette.BusinessProfile) (palette.GenerateResponse, error) {
	var resp palette.GenerateResponse
	err := c.do(ctx, http.MethodPost, "/api/generate-palettes", profile, &resp)
	return resp, err
}

func (c *Client) Chat(ctx context.Context, req palette.ChatRequest) (palette.ChatResponse, error) {
	var resp palette.ChatResponse
	err := c.do(ctx, http.MethodPost, "/api/chat", req, &resp)
	return resp, err
}

func (c *Client) RateLimit(ctx context.Context) (palette.RateLimitStatus, error) {
	var resp palette.RateLimitStatus
	err := c.do(ctx, http.MethodGet, "/api/rate-limit", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: "request failed"}
		var errBody httputil.ErrorBody
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Detail != "" {
			apiErr.Detail = errBody.Detail
			apiErr.Fields = errBody.Fields
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
