// README: Bounded retry with per-attempt timeout and exponential backoff for provider calls.
package infra

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxBackoff caps the wait between two attempts.
const maxBackoff = 5 * time.Second

// RetryPolicy bounds one logical provider call. Attempts counts the first try,
// so Attempts=2 means a single retry.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
	// Retryable decides whether a failed attempt is worth repeating; nil retries everything.
	Retryable func(error) bool
}

// newBackOff doubles the wait from p.Backoff without jitter and stops after
// the policy's retries or when ctx is done.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Backoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = maxBackoff
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Retry runs fn until it succeeds, the attempts are exhausted, or ctx is done.
// Each attempt gets its own deadline derived from ctx. The last attempt's error is returned.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := runAttempt(ctx, p.Timeout, fn)
		if err == nil {
			return nil
		}
		// Caller cancellation is never retried.
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, p.newBackOff(ctx))
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

// IsTimeout reports whether err is a deadline expiry rather than a provider answer.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
