package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// resetBuffer is added on top of the reported reset time so the first
// request after resuming lands safely inside the new quota window.
const resetBuffer = 5 * time.Second

// handleRateLimit inspects the rate-limit headers of a completed response
// and, when remaining quota drops below the threshold, blocks until the
// reported reset time elapses. This is a suspension, not a failure: no
// entry is dropped or reordered while waiting.
func (c *Client) handleRateLimit(ctx context.Context, h http.Header) error {
	remainingStr := h.Get("X-RateLimit-Remaining")
	if remainingStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil || remaining >= c.threshold {
		return nil
	}

	reset := time.Now().Add(time.Minute)
	if resetStr := h.Get("X-RateLimit-Reset"); resetStr != "" {
		if unix, parseErr := strconv.ParseInt(resetStr, 10, 64); parseErr == nil {
			reset = time.Unix(unix, 0)
		}
	}

	wait := time.Until(reset)
	if wait < 0 {
		wait = 0
	}
	wait += resetBuffer

	slog.Warn("Approaching GitHub rate limit, waiting for reset",
		"remaining", remaining,
		"reset", reset.Format(time.RFC3339),
		"wait", wait)

	return c.wait(ctx, wait)
}

// RateLimitStatus reports the remaining request quota and its reset time.
type RateLimitStatus struct {
	Reset     time.Time
	Remaining int
}

// RateLimit probes the API and reads the quota headers off the response.
func (c *Client) RateLimit(ctx context.Context) (RateLimitStatus, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RateLimitStatus{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RateLimitStatus{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return RateLimitStatus{}, fmt.Errorf("github API error (status %d)", resp.StatusCode)
	}

	status := RateLimitStatus{}
	if remaining, atoiErr := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); atoiErr == nil {
		status.Remaining = remaining
	}
	if unix, parseErr := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); parseErr == nil {
		status.Reset = time.Unix(unix, 0)
	}

	return status, nil
}
