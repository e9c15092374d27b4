// Package events talks to the external event-search proxy. Lookups
// are best-effort enrichment: a failure or a miss is never fatal to
// the caller, it just means no suggested title.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries the event-search proxy.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the proxy at baseURL. An empty
// baseURL yields a disabled client whose lookups always miss.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a proxy endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Lookup resolves a query (numeric id or free-text title) to at most
// one event title. A miss returns an empty string with no error.
func (c *Client) Lookup(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" || !c.Enabled() {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/lookup?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", fmt.Errorf("building lookup request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying event proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("event proxy returned %s", resp.Status)
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding event proxy response: %w", err)
	}
	return body.Title, nil
}
