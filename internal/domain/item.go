package domain

import "time"

// Location is an optional place attached to a raw item. A zero Lat and Lng
// together mean "no coordinates"; Name may be set on its own when the feed
// knew the place but not where it is.
type Location struct {
	Lat  float64 `json:"lat,omitempty"`
	Lng  float64 `json:"lng,omitempty"`
	Name string  `json:"name,omitempty"`
}

// HasCoordinates reports whether the location carries a usable coordinate
// pair. The 0,0 pair is reserved as the unresolved sentinel.
func (l Location) HasCoordinates() bool {
	return l.Lat != 0 || l.Lng != 0
}

// RawItem is one normalized report emitted by a source adapter. It is
// immutable once emitted and has no identity beyond its URL.
type RawItem struct {
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	URL        string    `json:"url"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	ImageURL   string    `json:"image_url,omitempty"`
	Location   Location  `json:"location,omitempty"`
	Tone       float64   `json:"tone,omitempty"`
	ThemeHints []string  `json:"theme_hints,omitempty"`
}

// MergedGroup is a cluster of raw items judged to describe the same
// real-world event. Built once per pipeline pass and never mutated after.
type MergedGroup struct {
	Canonical   RawItem  `json:"canonical"`
	SourceNames []string `json:"source_names"` // distinct, sorted
	SourceURLs  []string `json:"source_urls"`
	SourceCount int      `json:"source_count"` // == len(SourceNames), always >= 1
}

// CanonicalEvent is the persisted form of a merged group.
type CanonicalEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Timestamp   time.Time `json:"timestamp"`
	SourceLabel string    `json:"source_label"`
	Category    Category  `json:"category"`
	Intensity   int       `json:"intensity"` // always in [0,100]
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Tone        float64   `json:"tone,omitempty"`
	SourceCount int       `json:"source_count"`
	ProcessedAt time.Time `json:"processed_at"`
}

// HasCoordinates reports whether the event escaped the unresolved sentinel.
func (e CanonicalEvent) HasCoordinates() bool {
	return e.Lat != 0 || e.Lng != 0
}

// Category is one entry of the closed event taxonomy.
type Category string

const (
	CategoryConflict    Category = "conflict"
	CategoryPolitics    Category = "politics"
	CategoryDisaster    Category = "disaster"
	CategoryEconomics   Category = "economics"
	CategoryHealth      Category = "health"
	CategoryTechnology  Category = "technology"
	CategoryEnvironment Category = "environment"
)

// Categories lists the taxonomy in declaration order. Classifier ties
// resolve to the earliest entry, so the order is part of the contract.
func Categories() []Category {
	return []Category{
		CategoryConflict,
		CategoryPolitics,
		CategoryDisaster,
		CategoryEconomics,
		CategoryHealth,
		CategoryTechnology,
		CategoryEnvironment,
	}
}

// ValidCategory reports whether c belongs to the taxonomy.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
