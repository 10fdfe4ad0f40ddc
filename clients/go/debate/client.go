// Package debate provides a client for the debate-settled chat API,
// including the optimistic send and feed reconciliation logic used by
// interactive frontends.
package debate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Side identifies which feed a message belongs to.
type Side string

const (
	SidePrisma  Side = "prisma"
	SideDrizzle Side = "drizzle"
)

// Message mirrors the server's wire representation of a feed entry.
// Pending (not yet confirmed) messages carry a "temp-" prefixed ID.
type Message struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Sender       string `json:"sender"`
	Side         Side   `json:"side"`
	CreatedAt    int64  `json:"created_at"`
	CreationTime int64  `json:"creation_time"`
}

// Pending reports whether the message is a local optimistic entry that
// has not been confirmed by the server.
func (m Message) Pending() bool {
	return len(m.ID) > 5 && m.ID[:5] == "temp-"
}

// ListMessagesResponse is a page of one feed, newest first.
type ListMessagesResponse struct {
	Messages   []Message `json:"messages"`
	NextCursor string    `json:"next_cursor"`
	HasMore    bool      `json:"has_more"`
}

// SendResult is the server's acknowledgment of a persisted message.
type SendResult struct {
	ID           string `json:"id"`
	CreationTime int64  `json:"creation_time"`
}

// RateLimitResult reports the send quota window state.
type RateLimitResult struct {
	IsAllowed       bool  `json:"is_allowed"`
	CurrentRequests int   `json:"current_requests"`
	MaxRequests     int   `json:"max_requests"`
	ResetMs         int64 `json:"reset_ms"`
}

// SupporterCounts holds the total message count per feed.
type SupporterCounts struct {
	Prisma  int64 `json:"prisma"`
	Drizzle int64 `json:"drizzle"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is a debate-settled API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListMessages fetches one page of a feed, newest first. An empty cursor
// starts at the head of the feed.
func (c *Client) ListMessages(ctx context.Context, side Side, cursor string, limit int) (*ListMessagesResponse, error) {
	q := url.Values{}
	q.Set("side", string(side))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp ListMessagesResponse
	if err := c.do(ctx, http.MethodGet, "/messages?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage persists a message and returns its server-assigned
// identity.
func (c *Client) SendMessage(ctx context.Context, text, sender string, side Side) (*SendResult, error) {
	body := map[string]interface{}{
		"text":   text,
		"sender": sender,
		"side":   side,
	}

	var resp SendResult
	if err := c.do(ctx, http.MethodPost, "/messages", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckRateLimit consumes one send quota slot for the client IP if
// capacity remains.
func (c *Client) CheckRateLimit(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	body := map[string]interface{}{"client_ip": clientIP}

	var resp RateLimitResult
	if err := c.do(ctx, http.MethodPost, "/ratelimit/check", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Supporters fetches the per-feed message totals.
func (c *Client) Supporters(ctx context.Context) (*SupporterCounts, error) {
	var resp SupporterCounts
	if err := c.do(ctx, http.MethodGet, "/supporters", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do issues one request and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
