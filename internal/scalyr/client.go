// Package scalyr is a client for the Scalyr log-search API.
package scalyr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const queryEndpoint = "/api/query"

// TransportError wraps a network, HTTP-status, or JSON-decode failure
// from the log-search API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scalyr api %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryParams describes one log query. Zero values are filled with the
// API defaults before sending.
type QueryParams struct {
	Filter    string
	StartTime string
	EndTime   string
	MaxCount  int
	PageMode  string
	Columns   string
	Output    string
	Priority  string
}

// Match is one log line matched by a query.
type Match struct {
	Attributes map[string]interface{} `json:"attributes"`
}

// QueryResponse is the log-search response body.
type QueryResponse struct {
	Status  string  `json:"status"`
	Matches []Match `json:"matches"`
}

// Client calls the log-search API.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	log     *zap.Logger
}

// New builds a client with the given bearer token.
func New(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Query issues a single POST query. The log-search API does not
// paginate; matches arrive in one response.
func (c *Client) Query(ctx context.Context, p QueryParams) (*QueryResponse, error) {
	if p.Output == "" {
		p.Output = "json"
	}
	if p.Priority == "" {
		p.Priority = "high"
	}

	body := map[string]interface{}{
		"token":     c.token,
		"queryType": "log",
		"filter":    p.Filter,
		"startTime": p.StartTime,
		"endTime":   p.EndTime,
		"maxCount":  p.MaxCount,
		"pageMode":  p.PageMode,
		"columns":   p.Columns,
		"output":    p.Output,
		"priority":  p.Priority,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Endpoint: queryEndpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Endpoint: queryEndpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: queryEndpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Endpoint: queryEndpoint, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var out QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Endpoint: queryEndpoint, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.log.Info("scalyr query complete", zap.Int("matches", len(out.Matches)))
	return &out, nil
}
