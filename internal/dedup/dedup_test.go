package dedup_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowatch/event-radar/internal/dedup"
	"github.com/geowatch/event-radar/internal/domain"
)

var t0 = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *dedup.Engine {
	t.Helper()
	// Fixed clock keeps the age penalty deterministic.
	return dedup.NewEngine(dedup.DefaultConfig(), clockwork.NewFakeClockAt(t0.Add(3*time.Hour)))
}

func item(title, source, url string, ts time.Time, lat, lng float64) domain.RawItem {
	return domain.RawItem{
		Title:     title,
		Source:    source,
		URL:       url,
		Timestamp: ts,
		Location:  domain.Location{Lat: lat, Lng: lng},
	}
}

func TestMerge_TokyoEarthquakeScenario(t *testing.T) {
	e := newTestEngine(t)

	items := []domain.RawItem{
		item("Magnitude 7.1 earthquake hits Tokyo", "gdelt", "https://a.example/1", t0, 35.6, 139.7),
		item("7.1 quake strikes near Tokyo", "newsapi", "https://b.example/2", t0.Add(2*time.Hour), 35.8, 139.9),
	}

	groups := e.Merge(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].SourceCount)
	assert.ElementsMatch(t, []string{"gdelt", "newsapi"}, groups[0].SourceNames)
}

func TestMerge_DistanceGateSplitsIdenticalTitles(t *testing.T) {
	e := newTestEngine(t)

	// Same headline, same hour, but Tokyo and London are ~9,500 km apart.
	items := []domain.RawItem{
		item("Massive earthquake strikes downtown", "gdelt", "https://a.example/1", t0, 35.68, 139.69),
		item("Massive earthquake strikes downtown", "newsapi", "https://b.example/2", t0.Add(time.Hour), 51.5, -0.12),
	}

	groups := e.Merge(items)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].SourceCount)
	assert.Equal(t, 1, groups[1].SourceCount)
}

func TestMerge_TimeWindowGate(t *testing.T) {
	e := newTestEngine(t)

	items := []domain.RawItem{
		item("Wildfire spreads across northern hills", "gdelt", "https://a.example/1", t0, 38.5, -120.5),
		item("Wildfire spreads across northern hills", "rss", "https://b.example/2", t0.Add(30*time.Hour), 38.5, -120.5),
	}

	groups := e.Merge(items)
	assert.Len(t, groups, 2, "beyond the 24h window the same story is a new event")
}

func TestMerge_NoCoordinatesFallsBackToTitleAndTime(t *testing.T) {
	e := newTestEngine(t)

	items := []domain.RawItem{
		{Title: "Cyclone approaches eastern coastline", Source: "rss", URL: "https://a.example/1", Timestamp: t0},
		{Title: "Cyclone approaches eastern coastline", Source: "newsapi", URL: "https://b.example/2", Timestamp: t0.Add(time.Hour)},
	}

	groups := e.Merge(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].SourceCount)
}

func TestMerge_CanonicalPrefersCoordinatesAndBackfills(t *testing.T) {
	e := newTestEngine(t)

	withCoords := item("Flood submerges river district", "gdelt", "https://a.example/1", t0.Add(time.Hour), 23.8, 90.4)
	withImage := domain.RawItem{
		Title:     "Flood submerges river district",
		Source:    "newsapi",
		URL:       "https://b.example/2",
		Timestamp: t0,
		ImageURL:  "https://img.example/flood.jpg",
		Summary:   "Rising waters forced thousands of residents to evacuate low-lying neighborhoods overnight as the river crested well above danger level.",
		Tone:      -6.2,
	}

	groups := e.Merge([]domain.RawItem{withImage, withCoords})
	require.Len(t, groups, 1)

	canonical := groups[0].Canonical
	assert.Equal(t, "gdelt", canonical.Source, "coordinates outrank image and summary")
	assert.Equal(t, "https://img.example/flood.jpg", canonical.ImageURL, "image backfilled")
	assert.Equal(t, withImage.Summary, canonical.Summary, "longer summary backfilled")
	assert.InDelta(t, -6.2, canonical.Tone, 0.001, "tone backfilled")
	assert.True(t, canonical.Location.HasCoordinates())
}

func TestMerge_SourceCountIsDistinctSources(t *testing.T) {
	e := newTestEngine(t)

	items := []domain.RawItem{
		item("Protests erupt in capital square", "rss", "https://a.example/1", t0, 52.52, 13.4),
		item("Protests erupt in capital square", "rss", "https://a.example/2", t0.Add(time.Hour), 52.52, 13.4),
		item("Protests erupt in capital square", "gdelt", "https://b.example/3", t0.Add(time.Hour), 52.53, 13.41),
	}

	groups := e.Merge(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].SourceCount, "three URLs, two distinct sources")
	assert.Len(t, groups[0].SourceURLs, 3)
}

func TestMerge_DeterministicAcrossInputOrder(t *testing.T) {
	e := newTestEngine(t)

	items := []domain.RawItem{
		item("Magnitude 7.1 earthquake hits Tokyo", "gdelt", "https://a.example/1", t0, 35.6, 139.7),
		item("7.1 quake strikes near Tokyo", "newsapi", "https://b.example/2", t0.Add(2*time.Hour), 35.8, 139.9),
		item("Central bank raises rates sharply", "newsapi", "https://c.example/3", t0.Add(time.Minute), 0, 0),
	}
	reversed := []domain.RawItem{items[2], items[1], items[0]}

	first := e.Merge(items)
	second := e.Merge(reversed)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("group output depends on input order (-first +reversed):\n%s", diff)
	}
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		atLeast float64
		below   float64
	}{
		{"identical", "earthquake hits tokyo", "earthquake hits tokyo", 1.0, 0},
		{"rewritten headline", "magnitude 71 earthquake hits tokyo", "71 quake strikes near tokyo", 0.7, 0},
		{"unrelated", "central bank raises rates", "wildfire spreads across hills", 0, 0.6},
		{"empty", "", "anything", 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedup.TitleSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.atLeast)
			if tt.below > 0 {
				assert.Less(t, got, tt.below)
			}
		})
	}
}
