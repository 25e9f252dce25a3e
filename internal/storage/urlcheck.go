package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// URLChecker HEAD-checks public object URLs before a cached URL is trusted.
type URLChecker struct {
	client *http.Client
}

// NewURLChecker returns a checker whose requests are traced through otelhttp.
func NewURLChecker(timeout time.Duration) *URLChecker {
	return &URLChecker{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewURLCheckerWithClient is used by tests to inject an httptest client.
func NewURLCheckerWithClient(c *http.Client) *URLChecker {
	return &URLChecker{client: c}
}

// Resolves reports whether url answers a HEAD request with a 2xx status.
// A 404 or 403 is a definite "no"; transport errors are returned.
func (c *URLChecker) Resolves(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("build head request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("head %s: %w", url, err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("head %s: unexpected status %d", url, resp.StatusCode)
	}
}
