package store

import (
	"context"
	"sync"

	"github.com/geowatch/event-radar/internal/domain"
)

// MemoryEventStore is a thread-safe in-memory EventStore implementing the
// canonical upsert merge semantics.
type MemoryEventStore struct {
	mu     sync.Mutex
	events map[string]domain.CanonicalEvent
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{events: make(map[string]domain.CanonicalEvent)}
}

// UpsertEvents inserts new events and merges re-seen ones: intensity and
// source count each keep their maximum. Events that fail basic validation
// are skipped; a bad row never aborts the batch.
func (s *MemoryEventStore) UpsertEvents(_ context.Context, events []domain.CanonicalEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, event := range events {
		if event.ID == "" || !event.HasCoordinates() || !domain.ValidCategory(event.Category) {
			continue
		}

		existing, ok := s.events[event.ID]
		if !ok {
			s.events[event.ID] = event
			inserted++
			continue
		}

		if event.Intensity > existing.Intensity {
			existing.Intensity = event.Intensity
		}
		if event.SourceCount > existing.SourceCount {
			existing.SourceCount = event.SourceCount
		}
		existing.ProcessedAt = event.ProcessedAt
		s.events[event.ID] = existing
	}
	return inserted, nil
}

// Events returns a snapshot of all stored events.
func (s *MemoryEventStore) Events() []domain.CanonicalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CanonicalEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out
}

// Get returns a stored event by ID.
func (s *MemoryEventStore) Get(id string) (domain.CanonicalEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	return e, ok
}

// MemoryGeocodeStore is a thread-safe in-memory GeocodeStore.
type MemoryGeocodeStore struct {
	mu      sync.Mutex
	entries map[string]domain.GeocodeResult
}

func NewMemoryGeocodeStore() *MemoryGeocodeStore {
	return &MemoryGeocodeStore{entries: make(map[string]domain.GeocodeResult)}
}

func (s *MemoryGeocodeStore) GetGeocode(_ context.Context, name string) (domain.GeocodeResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.entries[name]
	return r, ok, nil
}

func (s *MemoryGeocodeStore) PutGeocode(_ context.Context, name string, result domain.GeocodeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = result
	return nil
}
