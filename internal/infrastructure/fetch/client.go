package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"PublicationIngest/internal/ports"
)

// Client downloads asset bytes with a bounded-time HTTP GET.
type Client struct {
	http *http.Client
}

var _ ports.AssetFetcher = (*Client)(nil)

// NewClient creates a reusable HTTP client with the given timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch returns the body bytes or ErrFetchFailed on transport errors and
// non-2xx statuses.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "PublicationIngest/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %v: %w", url, err, ports.ErrFetchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("get %s: status %s: %w", url, resp.Status, ports.ErrFetchFailed)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", url, err, ports.ErrFetchFailed)
	}

	return body, nil
}
