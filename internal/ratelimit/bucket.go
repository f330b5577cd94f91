// Package ratelimit provides the admission-control primitives shared by
// every network-calling component: a blocking token bucket and a bounded
// exponential-backoff retry wrapper.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Bucket is a token-bucket rate limiter. Tokens refill lazily at
// window/maxTokens intervals; Acquire blocks the caller until a token is
// available. It is an admission-control primitive, not a queue: callers
// serialize through it one at a time and are never rejected.
type Bucket struct {
	mu          sync.Mutex
	tokens      int
	maxTokens   int
	refillEvery time.Duration
	last        time.Time
	clock       clockwork.Clock
}

// NewBucket creates a bucket that admits maxTokens operations per window.
// Pass nil for clock to use real time.
func NewBucket(maxTokens int, window time.Duration, clock clockwork.Clock) *Bucket {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Bucket{
		tokens:      maxTokens,
		maxTokens:   maxTokens,
		refillEvery: window / time.Duration(maxTokens),
		last:        clock.Now(),
		clock:       clock,
	}
}

// Acquire blocks until a token is available or the context is cancelled.
// The wait is a suspension point; it never busy-loops.
func (b *Bucket) Acquire(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.refillLocked()
		if b.tokens > 0 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := b.refillEvery - b.clock.Now().Sub(b.last)
		b.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := b.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}
	}
}

// refillLocked credits tokens for the time elapsed since the last refill.
// Advancing last by whole refill intervals (not to now) keeps remainders,
// so partial intervals are not lost between calls.
func (b *Bucket) refillLocked() {
	now := b.clock.Now()
	if b.tokens >= b.maxTokens {
		b.last = now
		return
	}
	elapsed := now.Sub(b.last)
	n := int(elapsed / b.refillEvery)
	if n <= 0 {
		return
	}
	b.tokens += n
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.last = b.last.Add(time.Duration(n) * b.refillEvery)
}
