// Package feeds retrieves the third-party data shown by the ticker. Every
// fetcher handles its own failures: callers always receive a usable result
// and errors only reach the log.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single request so a hung endpoint cannot stall
	// a refresh cycle forever
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 16 << 20
	userAgent    = "ticker-frame/1.0"
)

// Client performs rate limited GET requests shared by all fetchers
type Client struct {
	httpClient *http.Client
	pacer      *hostPacer
}

// NewClient creates a client with a request timeout and a minimum interval
// between requests to the same host
func NewClient(timeout, hostInterval time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		pacer:      newHostPacer(hostInterval),
	}
}

// HTTPClient exposes the underlying client for parsers that issue their own
// requests
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Wait applies the host rate limit for url
func (c *Client) Wait(ctx context.Context, url string) error {
	if err := c.pacer.wait(ctx, url); err != nil {
		return fmt.Errorf("rate limiting failed: %w", err)
	}
	return nil
}

// Get fetches url and returns the response body. Status codes of 400 and
// above are errors.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
