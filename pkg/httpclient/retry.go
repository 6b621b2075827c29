package httpclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig bounds the retry loop. MaxRetries counts retries, not attempts:
// MaxRetries=3 means up to four invocations of the operation.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
	}
}

// StatusError is an upstream failure carrying the HTTP status code, which
// drives the retry decision.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %d - %s", e.Code, e.Body)
}

// Retryable reports whether the status signals a transient failure.
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case 408, 429, 502, 503, 504:
		return true
	}
	return false
}

// backoffDelay computes the pure exponential backoff for the given retry
// attempt (1-indexed), capped at MaxDelay regardless of how large the
// exponential term grows.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 30 {
		return cfg.MaxDelay
	}
	d := cfg.InitialDelay * time.Duration(1<<shift)
	if d <= 0 || d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

// DoWithRetry executes op, retrying with exponential backoff while it fails
// with a retryable StatusError. Any other failure, including one without a
// classifiable status, is returned immediately. The context is checked before
// each backoff sleep so callers that give up do not pay for remaining
// attempts. When retries are exhausted the last observed error is returned.
func DoWithRetry[T any](ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt)
			logrus.Debugf("[HTTP] retrying in %s (%d of %d)", delay, attempt, cfg.MaxRetries)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		v, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				logrus.Debugf("[HTTP] request succeeded after %d retries", attempt)
			}
			return v, nil
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.Retryable() {
			return zero, err
		}
		logrus.Warnf("[HTTP] request failed with status %d, attempt %d of %d", statusErr.Code, attempt, cfg.MaxRetries)
		lastErr = err
	}

	return zero, lastErr
}
