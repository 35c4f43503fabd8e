// Package tribapi is a client for the paginated content REST API.
package tribapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"content-analytics/internal/model"
)

const (
	defaultLimit = 100

	// ContentTypes is the set of content kinds the full report covers.
	ContentTypes = "story,video,audio,pointer"
)

// TransportError wraps a network, HTTP-status, or JSON-decode failure
// from the content API. Calls are never retried; the error propagates.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("content api %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// envelope is one page of the API response.
type envelope struct {
	Next    interface{}    `json:"next"`
	Results []model.Record `json:"results"`
}

// Client calls the content API.
type Client struct {
	baseURL string
	hc      *http.Client
	log     *zap.Logger
}

// New builds a client. timeout guards every request; the API itself
// enforces none.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Fetch requests every page of an endpoint and returns the accumulated
// results. Window dates are injected as start_date/end_date unless the
// caller already set them; offset starts at 0 and advances by limit
// until the response's next field is falsy.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values, w model.Window) ([]model.Record, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("start_date") == "" {
		params.Set("start_date", w.QueryStart())
	}
	if params.Get("end_date") == "" {
		params.Set("end_date", w.QueryEnd())
	}

	limit := defaultLimit
	if v := params.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	} else {
		params.Set("limit", strconv.Itoa(limit))
	}

	offset := 0
	if v := params.Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}

	var results []model.Record
	pages := 0
	for {
		params.Set("offset", strconv.Itoa(offset))
		page, err := c.getPage(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Results...)
		pages++
		if !truthy(page.Next) {
			break
		}
		offset += limit
	}

	c.log.Info("content api fetch complete",
		zap.String("endpoint", endpoint),
		zap.Int("pages", pages),
		zap.Int("records", len(results)))
	return results, nil
}

// Stories fetches only the body text of stories in the window, for the
// word-count analysis.
func (c *Client) Stories(ctx context.Context, w model.Window) ([]model.Record, error) {
	return c.Fetch(ctx, "stories/", url.Values{"fields": {"body"}}, w)
}

// Content fetches every field across the major content types.
func (c *Client) Content(ctx context.Context, w model.Window) ([]model.Record, error) {
	params := url.Values{
		"content_type": {ContentTypes},
		"fields":       {"all"},
	}
	return c.Fetch(ctx, "content/", params, w)
}

func (c *Client) getPage(ctx context.Context, endpoint string, params url.Values) (*envelope, error) {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var page envelope
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &page, nil
}

// truthy mirrors the envelope contract: pagination continues only while
// next is a non-empty, non-zero, non-false value.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}
