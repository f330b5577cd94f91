package domain

import "context"

// Source is the capability pair every feed adapter implements. The
// pipeline iterates a heterogeneous list of sources uniformly; each
// adapter owns its own credentials, quota counters, and rate limiter.
type Source interface {
	// Name is the stable adapter label used in logs and metrics.
	Name() string
	// Available reports whether the adapter is configured and has quota
	// remaining in the current window. Unavailable sources are skipped,
	// not failed.
	Available() bool
	// Fetch runs one full pass against the feed and returns normalized
	// items. Malformed upstream entries are dropped, not surfaced.
	Fetch(ctx context.Context) ([]RawItem, error)
}
