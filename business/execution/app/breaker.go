// Package app contains the execution services: the liquidity gate, the
// strategy selector and the execution breaker.
package app

import "sync"

// DefaultMaxConsecutiveFailures is the trip threshold when none is configured.
const DefaultMaxConsecutiveFailures = 5

// Breaker disables execution after a run of consecutive failures. A success
// resets the counter and re-enables execution; otherwise only Reset does.
// Monitoring is never affected.
type Breaker struct {
	mu       sync.Mutex
	max      int
	failures int
	enabled  bool
	onChange func(enabled bool, failures int)
}

// NewBreaker creates an enabled breaker tripping after max failures.
func NewBreaker(max int) *Breaker {
	if max <= 0 {
		max = DefaultMaxConsecutiveFailures
	}
	return &Breaker{max: max, enabled: true}
}

// OnChange registers fn to run after every state change. fn runs without
// the breaker's lock held.
func (b *Breaker) OnChange(fn func(enabled bool, failures int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// RecordOutcome is the single mutation point. It reports whether this
// outcome tripped the breaker.
func (b *Breaker) RecordOutcome(success bool) (tripped bool) {
	b.mu.Lock()
	if success {
		b.failures = 0
		b.enabled = true
	} else {
		b.failures++
		if b.enabled && b.failures >= b.max {
			b.enabled = false
			tripped = true
		}
	}
	enabled, failures, fn := b.enabled, b.failures, b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(enabled, failures)
	}
	return tripped
}

// Reset re-enables execution and clears the counter.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.failures = 0
	b.enabled = true
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(true, 0)
	}
}

// Enabled reports whether execution may be attempted.
func (b *Breaker) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// MaxFailures returns the trip threshold.
func (b *Breaker) MaxFailures() int {
	return b.max
}
