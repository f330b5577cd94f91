// Command genmock generates mock data fixtures: a raw-item batch covering
// every source shape, and the canonical events the real pipeline stages
// produce from that batch. It runs the actual dedup, classify, and
// intensity packages under a fixed clock so fixtures stay reproducible.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw-out testdata/raw_items.json \
//	  -events-out testdata/canonical_events.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/classify"
	"github.com/geowatch/event-radar/internal/dedup"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/intensity"
)

var baseTime = time.Date(2026, time.August, 29, 9, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for the raw-item JSON fixture")
	eventsOut := flag.String("events-out", "", "output path for the canonical-event JSON fixture")
	flag.Parse()

	if *rawOut == "" || *eventsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -events-out")
	}

	// Fixed clock for reproducible IDs and ProcessedAt timestamps.
	clock := clockwork.NewFakeClockAt(baseTime.Add(3 * time.Hour))
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	items := mockItems()

	engine := dedup.NewEngine(dedup.DefaultConfig(), clock)
	classifier := classify.New()
	scorer := intensity.NewScorer(intensity.DefaultConfig(), clock)

	groups := engine.Merge(items)
	var events []domain.CanonicalEvent
	for _, group := range groups {
		if !group.Canonical.Location.HasCoordinates() {
			continue
		}
		category := classifier.Classify(group.Canonical)
		events = append(events, domain.NewCanonicalEvent(group, category, scorer.Score(group, category)))
	}

	if err := writeJSON(*rawOut, items); err != nil {
		return fmt.Errorf("write raw fixture: %w", err)
	}
	if err := writeJSON(*eventsOut, events); err != nil {
		return fmt.Errorf("write events fixture: %w", err)
	}

	fmt.Printf("wrote %d raw items, %d canonical events\n", len(items), len(events))
	return nil
}

// mockItems covers the shapes each adapter emits: corroborated disaster
// reports, a keyed-feed item with theme hints and a native location, an
// RSS item with VADER-style tone, and an item with no resolvable place.
func mockItems() []domain.RawItem {
	return []domain.RawItem{
		{
			Title:     "Magnitude 7.1 earthquake hits Tokyo",
			URL:       "https://example.com/quake-a",
			Timestamp: baseTime,
			Source:    "wire-a",
			ImageURL:  "https://example.com/quake.jpg",
			Location:  domain.Location{Lat: 35.6, Lng: 139.7},
			Tone:      -7.2,
		},
		{
			Title:     "7.1 quake strikes near Tokyo",
			URL:       "https://example.com/quake-b",
			Timestamp: baseTime.Add(2 * time.Hour),
			Source:    "wire-b",
			Location:  domain.Location{Lat: 35.8, Lng: 139.9},
		},
		{
			Title:      "Armed clashes erupt at northern border",
			Summary:    "Heavy fighting was reported overnight near the crossing.",
			URL:        "https://example.com/clash",
			Timestamp:  baseTime.Add(30 * time.Minute),
			Source:     "eventregistry",
			Location:   domain.Location{Lat: 33.5138, Lng: 36.2765, Name: "Damascus"},
			Tone:       -6.4,
			ThemeHints: []string{"ARMED_CONFLICT"},
		},
		{
			Title:     "Central bank holds interest rates steady",
			Summary:   "Policymakers voted to keep the benchmark rate unchanged.",
			URL:       "https://example.com/rates",
			Timestamp: baseTime.Add(time.Hour),
			Source:    "Financial Times",
			Location:  domain.Location{Lat: 51.5074, Lng: -0.1278},
			Tone:      1.1,
		},
		{
			Title:     "Committee debates procedural motion",
			URL:       "https://example.com/motion",
			Timestamp: baseTime.Add(90 * time.Minute),
			Source:    "wire-c",
		},
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
