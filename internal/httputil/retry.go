package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryConfig bounds the retry loop around an outbound HTTP call.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// backoff returns the delay before the given retry, doubling from
// BaseDelay and capped at MaxDelay. attempt is 1-based.
func (cfg RetryConfig) backoff(attempt int) time.Duration {
	d := cfg.BaseDelay << (attempt - 1)
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}

// retryable reports whether a response warrants another attempt. Client
// errors are final; only server-side failures are worth repeating.
func retryable(resp *http.Response) bool {
	return resp.StatusCode >= 500
}

// Do runs buildReq and sends the result, retrying transport errors and
// 5xx responses with exponential backoff. 4xx responses are handed back
// untouched. buildReq runs once per attempt so consumed request bodies
// can be rebuilt.
func Do(ctx context.Context, client *http.Client, cfg RetryConfig, buildReq func() (*http.Request, error)) (*http.Response, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case retryable(resp):
			// Keep a slice of the body for the error message, then
			// release the connection.
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(snippet))
		default:
			return resp, nil
		}

		if attempt == cfg.MaxAttempts {
			return nil, fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
		}

		wait := cfg.backoff(attempt)
		fmt.Printf("[RETRY] Attempt %d/%d failed: %v, retrying in %s\n",
			attempt, cfg.MaxAttempts, lastErr, wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
