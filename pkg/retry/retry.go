package retry

import (
	"context"
	"time"
)

// Policy is a parameterized retry policy: a bounded number of attempts with a
// fixed wait between them, each attempt running under its own timeout. The
// same policy instance is shared by every caller that needs retries, so retry
// behavior stays uniform across endpoints.
type Policy struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

// NoRetry runs a single attempt under the given timeout.
func NoRetry(timeout time.Duration) Policy {
	return Policy{MaxAttempts: 1, AttemptTimeout: timeout}
}

// Do runs fn until it succeeds or attempts are exhausted. The last error is
// returned. Waits between attempts respect ctx cancellation.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}

		lastErr = fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if lastErr == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}
		if p.Backoff > 0 {
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
