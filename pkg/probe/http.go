package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPChecker performs HTTP-based readiness checks against host-reachable
// endpoints, such as the gateway dashboard on loopback.
type HTTPChecker struct {
	// URL is the full URL to check
	URL string

	// Client is the HTTP client to use (allows custom configuration)
	Client *http.Client
}

// NewHTTPChecker creates an HTTP readiness checker. Any 2xx or 3xx response
// counts as healthy.
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		URL: url,
		Client: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

// Check performs the HTTP readiness check
func (h *HTTPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("failed to create request: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("request failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	defer resp.Body.Close()

	healthy := resp.StatusCode >= 200 && resp.StatusCode < 400
	return Result{
		Healthy:   healthy,
		Message:   fmt.Sprintf("GET %s: %s", h.URL, resp.Status),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Type returns the check type
func (h *HTTPChecker) Type() CheckType {
	return CheckTypeHTTP
}
