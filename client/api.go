// Package client is the Go counterpart of the browser-side state layer: an
// API client for the backend, the draft/committed configuration store, and
// the device-local fallback cache for inline-encoded media.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"biolink_back/siteconfig"
)

// APIError carries the human-readable reason a mutating call was refused.
// The reason is surfaced to the user verbatim.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// APIClient wraps the HTTP calls to the bio-link backend.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewAPIClient builds a client for the given base URL. The transport
// carries a timeout so an unresponsive backend delays rather than blocks
// the save and load flows.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

type configEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type saveEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type viewsEnvelope struct {
	Views int64  `json:"views"`
	Error string `json:"error"`
}

// FetchConfig returns the stored document, or nil when the server has no
// data.
func (c *APIClient) FetchConfig(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var envelope configEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode config response: %w", err)
	}
	if !envelope.Success {
		return nil, errors.New("config read rejected")
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, nil
	}
	return envelope.Data, nil
}

// SaveConfig submits the draft with the admin password. A refusal comes
// back as *APIError with the server's reason.
func (c *APIClient) SaveConfig(ctx context.Context, password string, cfg siteconfig.SiteConfig) error {
	body, err := json.Marshal(map[string]any{
		"password": password,
		"config":   cfg,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/config", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope saveEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode save response: %w", err)
	}
	if !envelope.Success {
		return &APIError{StatusCode: resp.StatusCode, Reason: envelope.Error}
	}
	return nil
}

// DeleteConfig asks the server to drop the stored document.
func (c *APIClient) DeleteConfig(ctx context.Context, password string) error {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/config", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope saveEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	if !envelope.Success {
		return &APIError{StatusCode: resp.StatusCode, Reason: envelope.Error}
	}
	return nil
}

// FetchViews returns the current view count.
func (c *APIClient) FetchViews(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/views", nil)
	if err != nil {
		return 0, err
	}
	return c.doViews(req)
}

// IncrementViews counts one view, tagging the request with the visitor
// identifier.
func (c *APIClient) IncrementViews(ctx context.Context, visitorID string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/views", nil)
	if err != nil {
		return 0, err
	}
	if visitorID != "" {
		req.Header.Set("X-Visitor-Id", visitorID)
	}
	return c.doViews(req)
}

// SetViews overwrites the counter. Administrative override.
func (c *APIClient) SetViews(ctx context.Context, value int64) (int64, error) {
	body, err := json.Marshal(map[string]int64{"views": value})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/views", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doViews(req)
}

func (c *APIClient) doViews(req *http.Request) (int64, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var envelope viewsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("decode views response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &APIError{StatusCode: resp.StatusCode, Reason: envelope.Error}
	}
	return envelope.Views, nil
}
