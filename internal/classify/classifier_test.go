package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geowatch/event-radar/internal/classify"
	"github.com/geowatch/event-radar/internal/domain"
)

func TestClassify_KeywordScoring(t *testing.T) {
	c := classify.New()

	tests := []struct {
		name string
		item domain.RawItem
		want domain.Category
	}{
		{
			name: "earthquake report",
			item: domain.RawItem{Title: "Magnitude 7.1 earthquake hits Tokyo, tsunami warning issued"},
			want: domain.CategoryDisaster,
		},
		{
			name: "armed conflict",
			item: domain.RawItem{Title: "Airstrike destroys depot as troops begin new offensive"},
			want: domain.CategoryConflict,
		},
		{
			name: "markets",
			item: domain.RawItem{
				Title:   "Central bank signals higher interest rate path",
				Summary: "Inflation remains above target for a third consecutive quarter.",
			},
			want: domain.CategoryEconomics,
		},
		{
			name: "outbreak",
			item: domain.RawItem{Title: "Cholera outbreak spreads as hospital capacity runs out"},
			want: domain.CategoryHealth,
		},
		{
			name: "substring does not match whole word",
			// "warming" must not trip the "war" keyword.
			item: domain.RawItem{Title: "Ocean warming accelerates glacier retreat"},
			want: domain.CategoryEnvironment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.item))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := classify.New()
	item := domain.RawItem{Title: "Parliament approves sanctions after contested election"}

	first := c.Classify(item)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(item))
	}
}

func TestClassify_TieBreaksToFirstDeclaredCategory(t *testing.T) {
	c := classify.New()

	// "war" (conflict, 3) and "election" (politics, 3) score equal;
	// conflict is declared first.
	item := domain.RawItem{Title: "war election"}
	assert.Equal(t, domain.CategoryConflict, c.Classify(item))
}

func TestClassify_ThemeHintOutweighsKeywords(t *testing.T) {
	c := classify.New()

	item := domain.RawItem{
		Title:      "Minister comments on regional vote",
		ThemeHints: []string{"NATURAL_DISASTER"},
	}
	assert.Equal(t, domain.CategoryDisaster, c.Classify(item))
}

func TestClassify_ThemeHintTokenConventions(t *testing.T) {
	c := classify.New()

	// Feeds disagree on token shape: event-graph concepts arrive as
	// UPPER_SNAKE labels, GKG codes without separators. Both must land.
	tests := []struct {
		name string
		hint string
		want domain.Category
	}{
		{"concept label with underscore", "ARMED_CONFLICT", domain.CategoryConflict},
		{"gkg code without separator", "ARMEDCONFLICT", domain.CategoryConflict},
		{"multi word concept", "CLIMATE_CHANGE", domain.CategoryEnvironment},
		{"prefixed gkg code", "ENV_CLIMATECHANGE", domain.CategoryEnvironment},
		{"spaced lowercase label", "natural disaster", domain.CategoryDisaster},
		{"bare concept", "PANDEMIC", domain.CategoryHealth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.RawItem{
				Title:      "Situation develops at the border",
				ThemeHints: []string{tt.hint},
			}
			assert.Equal(t, tt.want, c.Classify(item))
		})
	}
}

func TestClassify_NegativeToneBoostsConflictAndDisaster(t *testing.T) {
	c := classify.New()

	neutral := domain.RawItem{Title: "Residents describe chaotic scenes downtown"}
	assert.Equal(t, domain.CategoryPolitics, c.Classify(neutral), "no signal falls through to default")

	hostile := neutral
	hostile.Tone = -8.5
	got := c.Classify(hostile)
	assert.Equal(t, domain.CategoryConflict, got, "tone bonus applies in declaration order")
}

func TestClassify_SourceHeuristicFallback(t *testing.T) {
	c := classify.New()

	item := domain.RawItem{Title: "Quarterly numbers released", Source: "techcrunch-rss"}
	assert.Equal(t, domain.CategoryTechnology, c.Classify(item))

	item.Source = "global-wire"
	assert.Equal(t, domain.CategoryPolitics, c.Classify(item), "fixed default when nothing matches")
}
