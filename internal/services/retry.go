package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds every store round trip made by the domain operations:
// each attempt runs under OpTimeout, failed attempts are retried up to
// Attempts times with a linearly growing backoff, and exhaustion surfaces as
// ErrStoreUnavailable, so a stalled store can never hang an operation.
type RetryPolicy struct {
	Attempts  int
	Backoff   time.Duration
	OpTimeout time.Duration
}

// DefaultRetryPolicy is used when configuration supplies nothing.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  3,
	Backoff:   200 * time.Millisecond,
	OpTimeout: 5 * time.Second,
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = DefaultRetryPolicy.Attempts
	}
	if p.OpTimeout <= 0 {
		p.OpTimeout = DefaultRetryPolicy.OpTimeout
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// Do runs fn until it succeeds or attempts are exhausted. fn must contain
// only store I/O; domain decisions (missing records, illegal transitions)
// belong between Do calls so they are never retried.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, op string, fn func(ctx context.Context) error) error {
	p = p.normalized()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.OpTimeout)
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			// The caller is gone; retrying would only hide it.
			return fmt.Errorf("%s: %w", op, context.Cause(ctx))
		}

		if attempt < p.Attempts {
			logger.Warn("store operation failed, retrying",
				"operation", op,
				"attempt", attempt,
				"error", lastErr)
			select {
			case <-time.After(time.Duration(attempt) * p.Backoff):
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, context.Cause(ctx))
			}
		}
	}

	logger.Error("store operation exhausted retries",
		"operation", op,
		"attempts", p.Attempts,
		"error", lastErr)
	return errors.Join(fmt.Errorf("%s: %w", op, ErrStoreUnavailable), lastErr)
}
