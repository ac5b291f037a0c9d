// Package sdk is a small HTTP client for the prodask chat API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 90 * time.Second

// Client talks to a running prodask server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("sdk: base URL required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ChatResponse is the server's answer to one query.
type ChatResponse struct {
	SessionID   string         `json:"session_id"`
	Answer      string         `json:"answer"`
	State       string         `json:"state"`
	FilterStage string         `json:"filter_stage,omitempty"`
	Relaxed     bool           `json:"relaxed,omitempty"`
	Evidence    []EvidenceItem `json:"evidence,omitempty"`
	Usage       map[string]int `json:"usage,omitempty"`
}

// EvidenceItem identifies one supporting document.
type EvidenceItem struct {
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
	ProductID  string  `json:"product_id,omitempty"`
	Score      float64 `json:"score"`
}

// Ask sends one message. An empty sessionID starts a new session; reuse the
// returned SessionID to keep conversational context.
func (c *Client) Ask(ctx context.Context, sessionID, message string) (ChatResponse, error) {
	body, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("sdk: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("sdk: chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ChatResponse{}, decodeError(resp)
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ChatResponse{}, fmt.Errorf("sdk: decode response: %w", err)
	}
	return out, nil
}

// Health reports whether the server and its dependencies are up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sdk: server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("sdk: %s (%s, status %d)", apiErr.Message, apiErr.Code, resp.StatusCode)
	}
	return fmt.Errorf("sdk: request failed: status %d", resp.StatusCode)
}
