// Package dedup groups raw items that describe the same real-world event
// using greedy single-link clustering over fuzzy title similarity plus
// geographic and temporal proximity, then merges each group into one
// canonical item.
package dedup

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/domain"
)

// Config holds the clustering thresholds.
type Config struct {
	SimilarityThreshold float64       // minimum title similarity, default 0.7
	RadiusKm            float64       // maximum distance when both items carry coordinates
	TimeWindow          time.Duration // maximum offset from the group seed
}

// DefaultConfig matches the production tuning: 0.7 similarity, 50 km, 24 h.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.7,
		RadiusKm:            50,
		TimeWindow:          24 * time.Hour,
	}
}

// Engine clusters and merges one batch of raw items per pipeline pass.
type Engine struct {
	cfg   Config
	clock clockwork.Clock
}

// NewEngine creates an Engine. Pass nil for clock to use real time.
func NewEngine(cfg Config, clock clockwork.Clock) *Engine {
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = 0.7
	}
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = 50
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = 24 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{cfg: cfg, clock: clock}
}

// Merge clusters the batch and folds each cluster into a MergedGroup.
//
// The clustering is greedy single-link: items are scanned in order; each
// unprocessed item seeds a group and claims every later unprocessed item
// that matches any current member. The result depends on scan order, so
// the input is stable-sorted by timestamp, then source, then URL first to
// make output reproducible.
func (e *Engine) Merge(items []domain.RawItem) []domain.MergedGroup {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]domain.RawItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		return sorted[i].URL < sorted[j].URL
	})

	titles := make([]string, len(sorted))
	for i, item := range sorted {
		titles[i] = domain.NormalizeTitle(item.Title)
	}

	processed := make([]bool, len(sorted))
	groups := make([]domain.MergedGroup, 0, len(sorted))

	for i := range sorted {
		if processed[i] {
			continue
		}
		processed[i] = true
		members := []int{i}

		for j := i + 1; j < len(sorted); j++ {
			if processed[j] {
				continue
			}
			if !e.withinSeedWindow(sorted[i], sorted[j]) {
				continue
			}
			if e.matchesAny(sorted, titles, members, j) {
				processed[j] = true
				members = append(members, j)
			}
		}

		groups = append(groups, e.mergeGroup(sorted, members))
	}
	return groups
}

func (e *Engine) withinSeedWindow(seed, candidate domain.RawItem) bool {
	diff := candidate.Timestamp.Sub(seed.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.cfg.TimeWindow
}

// matchesAny is the single-link check: the candidate joins when it matches
// at least one existing member. Two items match when their titles are
// similar enough and, if both carry coordinates, the distance between them
// is inside the radius. Distance is a hard gate: identical titles far
// apart stay separate events.
func (e *Engine) matchesAny(items []domain.RawItem, titles []string, members []int, candidate int) bool {
	for _, m := range members {
		if e.itemsMatch(items[m], items[candidate], titles[m], titles[candidate]) {
			return true
		}
	}
	return false
}

func (e *Engine) itemsMatch(a, b domain.RawItem, titleA, titleB string) bool {
	if a.Location.HasCoordinates() && b.Location.HasCoordinates() {
		dist := domain.Haversine(a.Location.Lat, a.Location.Lng, b.Location.Lat, b.Location.Lng)
		if dist > e.cfg.RadiusKm {
			return false
		}
	}
	return TitleSimilarity(titleA, titleB) >= e.cfg.SimilarityThreshold
}
