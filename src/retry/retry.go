// Package retry wraps the HTTP download primitive with bounded retries for
// transient failures. This is transport-level only: a load that completed
// with an error is never re-run here, re-running a load is always a caller
// decision.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/deckfort/cardtable-engine-go/src/http"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig returns the defaults used by the loader and image cache.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     8 * time.Second,
	}
}

// shouldRetry reports whether a response or error is worth another attempt.
// Network errors, 429 and 5xx retry; everything else does not.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp.StatusCode == 429 {
		return true
	}
	return resp.StatusCode >= 500
}

// retryDelay calculates the delay before the next attempt, honouring a
// Retry-After header on rate-limited responses.
func retryDelay(resp *http.Response, attempt int, config Config) time.Duration {
	if resp != nil && resp.StatusCode == 429 {
		if retryAfter := resp.Headers["Retry-After"]; retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				delay := time.Duration(seconds) * time.Second
				if delay > config.MaxDelay {
					return config.MaxDelay
				}
				return delay
			}
		}
	}

	// Exponential backoff: initialDelay * 2^(attempt-1), capped.
	delay := config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > config.MaxDelay {
			return config.MaxDelay
		}
	}
	return delay
}

// Get performs a GET through the client, retrying transient failures with
// exponential backoff. Non-retryable responses are returned as-is so callers
// can apply their own status policy.
func Get(ctx context.Context, client http.HTTPClient, url string, config Config) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if attempt > 1 {
			slog.Warn("retrying request", "url", url, "attempt", attempt, "max_attempts", config.MaxAttempts)
		}

		resp, err := client.Get(ctx, url)
		if err == nil && resp.OK() {
			return resp, nil
		}

		lastResp = resp
		lastErr = err

		if !shouldRetry(resp, err) {
			if err == nil {
				return resp, nil
			}
			return nil, err
		}

		if attempt == config.MaxAttempts {
			break
		}

		delay := retryDelay(resp, attempt, config)
		slog.Info("backing off before retry", "url", url, "delay", delay, "reason", retryReason(resp, err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", config.MaxAttempts, lastErr)
	}
	return lastResp, nil
}

func retryReason(resp *http.Response, err error) string {
	if err != nil {
		return "network_error"
	}
	if resp.StatusCode == 429 {
		return "rate_limited"
	}
	if resp.StatusCode >= 500 {
		return "server_error"
	}
	return "unknown"
}
