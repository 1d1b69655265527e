// Package retry re-invokes failing operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds a retried operation. Delays grow as BaseDelay * 2^attempt.
type Policy struct {
	// MaxRetries is the total number of attempts.
	MaxRetries uint
	BaseDelay  time.Duration
	// MaxDelay caps a single wait. Zero means BaseDelay * 2^(MaxRetries-1).
	MaxDelay time.Duration
}

// DefaultPolicy is three attempts starting at 500ms.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: 500 * time.Millisecond}
}

// NotifyFn observes a failed attempt before the wait.
type NotifyFn func(err error, wait time.Duration)

// Do runs op until it succeeds, returns a Permanent error, or the attempts are
// exhausted. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify ...NotifyFn) (T, error) {
	attempts := p.MaxRetries
	if attempts == 0 {
		attempts = 1
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(attempts),
		backoff.WithMaxElapsedTime(0),
	}
	if len(notify) > 0 && notify[0] != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(notify[0])))
	}

	return backoff.Retry(ctx, func() (T, error) {
		return op(ctx)
	}, opts...)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	maxDelay := p.MaxDelay
	if maxDelay == 0 {
		maxDelay = p.BaseDelay << max(int(p.MaxRetries)-1, 0)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxDelay
	b.Reset()
	return b
}
