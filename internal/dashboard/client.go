// Package dashboard renders the collector's statistics as an HTML report
// with a date-range filter.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carboncost/carboncost/internal/domain/types"
	"github.com/carboncost/carboncost/pkg/metrics"
)

const defaultClientTimeout = 10 * time.Second

// StatsFetcher retrieves the collector aggregate view.
type StatsFetcher interface {
	FetchStats(ctx context.Context) (types.Stats, error)
}

// Client reads GET /stats from the collector.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// NewClient creates a client for the collector at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStats performs GET /stats and decodes the body. Any status other
// than 200 is an error.
func (c *Client) FetchStats(ctx context.Context) (stats types.Stats, err error) {
	defer func() {
		if err != nil {
			metrics.RecordDashboardFetch("error")
			return
		}
		metrics.RecordDashboardFetch("ok")
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", http.NoBody)
	if err != nil {
		return types.Stats{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return types.Stats{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Stats{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return types.Stats{}, fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}
	return stats, nil
}
