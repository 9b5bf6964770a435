package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryOpts configures Retry.
type RetryOpts struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration
	// Retryable decides whether an error should be retried. Nil means
	// always retry.
	Retryable func(error) bool
}

// Retry runs f up to opts.MaxAttempts times, sleeping opts.Backoff between
// attempts, stopping early when opts.Retryable returns false or the context
// is cancelled. It returns the last error on exhaustion.
func Retry(ctx context.Context, opts RetryOpts, f func(context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = f(ctx)
		if lastErr == nil {
			return nil
		}
		if opts.Retryable != nil && !opts.Retryable(lastErr) {
			return lastErr
		}
		if attempt < opts.MaxAttempts-1 && opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Backoff):
			}
		}
	}
	return lastErr
}

// ErrExhausted names retry exhaustion. Retry neither returns nor wraps it:
// after the last failed attempt Retry returns that attempt's error as is.
var ErrExhausted = errors.New("resilience: retry attempts exhausted")
