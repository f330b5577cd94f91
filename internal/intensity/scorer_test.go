package intensity_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/intensity"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newScorer() *intensity.Scorer {
	return intensity.NewScorer(intensity.DefaultConfig(), clockwork.NewFakeClockAt(now))
}

func group(item domain.RawItem, sourceCount int) domain.MergedGroup {
	return domain.MergedGroup{Canonical: item, SourceCount: sourceCount}
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	s := newScorer()

	floor := group(domain.RawItem{
		Title:     "Quiet afternoon reported",
		Timestamp: now.Add(-48 * time.Hour),
	}, 1)

	ceiling := group(domain.RawItem{
		Title: "Breaking: catastrophic explosion, massive deadly crisis, " +
			"unprecedented emergency, thousands affected, millions displaced",
		Timestamp: now.Add(-10 * time.Minute),
		Tone:      -10,
	}, 25)

	for name, g := range map[string]domain.MergedGroup{"floor": floor, "ceiling": ceiling} {
		for _, category := range domain.Categories() {
			got := s.Score(g, category)
			assert.GreaterOrEqual(t, got, 0, "%s %s", name, category)
			assert.LessOrEqual(t, got, 100, "%s %s", name, category)
		}
	}

	assert.Equal(t, 100, s.Score(ceiling, domain.CategoryConflict), "ceiling case clamps, never overflows")
}

func TestScore_CorroborationRaisesIntensity(t *testing.T) {
	s := newScorer()

	item := domain.RawItem{
		Title:     "Magnitude 7.1 earthquake hits Tokyo",
		Timestamp: now.Add(-30 * time.Minute),
		Tone:      -7.2,
	}

	single := domain.RawItem{
		Title:     item.Title,
		Timestamp: item.Timestamp,
	}

	corroborated := s.Score(group(item, 2), domain.CategoryDisaster)
	lone := s.Score(group(single, 1), domain.CategoryDisaster)
	assert.Greater(t, corroborated, lone,
		"two corroborating sources with hostile tone outrank a single neutral report")
}

func TestScore_SourceCountCapsAtTen(t *testing.T) {
	s := newScorer()
	item := domain.RawItem{Title: "Storm damages harbor", Timestamp: now.Add(-2 * time.Hour)}

	atCap := s.Score(group(item, 10), domain.CategoryDisaster)
	overCap := s.Score(group(item, 50), domain.CategoryDisaster)
	assert.Equal(t, atCap, overCap)
}

func TestScore_RecencyDecay(t *testing.T) {
	s := newScorer()

	mk := func(age time.Duration) domain.MergedGroup {
		return group(domain.RawItem{Title: "Storm damages harbor", Timestamp: now.Add(-age)}, 3)
	}

	fresh := s.Score(mk(30*time.Minute), domain.CategoryDisaster)
	midway := s.Score(mk(12*time.Hour), domain.CategoryDisaster)
	stale := s.Score(mk(36*time.Hour), domain.CategoryDisaster)

	assert.Greater(t, fresh, midway)
	assert.Greater(t, midway, stale)
}

func TestScore_ClockSkewGetsNoBonus(t *testing.T) {
	s := newScorer()

	future := group(domain.RawItem{Title: "Storm damages harbor", Timestamp: now.Add(2 * time.Hour)}, 3)
	past := group(domain.RawItem{Title: "Storm damages harbor", Timestamp: now.Add(-36 * time.Hour)}, 3)

	assert.Equal(t, s.Score(past, domain.CategoryDisaster), s.Score(future, domain.CategoryDisaster),
		"a future timestamp scores like a stale one, never like a fresh one")
}

func TestScore_CategoryMultiplierOrdering(t *testing.T) {
	s := newScorer()
	g := group(domain.RawItem{Title: "Major incident downtown", Timestamp: now.Add(-30 * time.Minute)}, 4)

	conflict := s.Score(g, domain.CategoryConflict)
	politics := s.Score(g, domain.CategoryPolitics)
	technology := s.Score(g, domain.CategoryTechnology)

	assert.Greater(t, conflict, politics)
	assert.Greater(t, politics, technology)
}
