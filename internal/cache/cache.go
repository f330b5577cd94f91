// Package cache defines the key/value cache used by feed adapters and the
// location resolver, with in-memory and Redis backends.
//
// Cache failures are never fatal: Get returns a three-state Lookup and
// every caller folds a backend error into a miss (fail-open). A cache that
// is down degrades the pipeline to slower, not broken.
package cache

import (
	"context"
	"time"
)

// State classifies the outcome of a lookup.
type State int

const (
	StateHit State = iota
	StateMiss
	StateError
)

// Lookup is the result of a Get: hit, miss, or backend error. Callers must
// treat StateError exactly like StateMiss.
type Lookup struct {
	State State
	Value []byte
	Err   error
}

// Found reports whether the lookup produced a usable value. Backend errors
// fold into "not found".
func (l Lookup) Found() bool { return l.State == StateHit }

// Hit wraps a cached value.
func Hit(value []byte) Lookup { return Lookup{State: StateHit, Value: value} }

// Miss is an absent key.
func Miss() Lookup { return Lookup{State: StateMiss} }

// BackendError records a backend failure; treated as a miss by callers.
func BackendError(err error) Lookup { return Lookup{State: StateError, Err: err} }

// Cache is a TTL key/value store with pattern invalidation.
type Cache interface {
	Get(ctx context.Context, key string) Lookup
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every key starting with the given prefix.
	DeletePattern(ctx context.Context, prefix string) error
}

// GetOrCompute returns the cached value for key, or computes, stores, and
// returns it. Cache reads and writes fail open: a broken backend degrades
// to calling fn every time, never to an error.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if lookup := c.Get(ctx, key); lookup.Found() {
		return lookup.Value, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, value, ttl) // best effort
	return value, nil
}
