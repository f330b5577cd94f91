// Package store declares the persistence interfaces the pipeline depends
// on, plus in-memory reference implementations. The relational store proper
// lives in another service; these impls pin down the merge semantics the
// pipeline relies on and back the test suite.
package store

import (
	"context"

	"github.com/geowatch/event-radar/internal/domain"
)

// EventStore persists canonical events. UpsertEvents must be idempotent by
// event ID: on conflict the stored row keeps the maximum intensity and
// source count rather than duplicating. It returns the number of newly
// inserted events.
type EventStore interface {
	UpsertEvents(ctx context.Context, events []domain.CanonicalEvent) (int, error)
}

// GeocodeStore is the durable second cache tier for resolved place names,
// keyed by normalized name. Entries are append-only and shared across runs.
type GeocodeStore interface {
	GetGeocode(ctx context.Context, name string) (domain.GeocodeResult, bool, error)
	PutGeocode(ctx context.Context, name string, result domain.GeocodeResult) error
}
