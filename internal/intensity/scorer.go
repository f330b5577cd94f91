// Package intensity produces the bounded 0–100 significance score used for
// ranking and heatmap weighting. It is a significance measure, not a
// probability.
package intensity

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/domain"
)

// Config holds the scoring weights. Zero values fall back to defaults.
type Config struct {
	SourceCountWeight float64
	ToneWeight        float64
	KeywordCap        float64
	RecencyBonus      float64
	DecayWindow       time.Duration
	// MaxExpected normalizes the raw score so that typical high-salience
	// events land near 80–100 and low-salience ones near 10–30.
	MaxExpected float64
}

// DefaultConfig matches the production tuning.
func DefaultConfig() Config {
	return Config{
		SourceCountWeight: 4,
		ToneWeight:        1.5,
		KeywordCap:        15,
		RecencyBonus:      10,
		DecayWindow:       24 * time.Hour,
		MaxExpected:       90,
	}
}

// Scorer computes intensity for merged groups. Safe for concurrent use.
type Scorer struct {
	cfg      Config
	keywords []impactKeyword
	clock    clockwork.Clock
}

type impactKeyword struct {
	re     *regexp.Regexp
	weight float64
}

// NewScorer compiles the impact lexicon. Pass nil for clock to use real time.
func NewScorer(cfg Config, clock clockwork.Clock) *Scorer {
	defaults := DefaultConfig()
	if cfg.SourceCountWeight <= 0 {
		cfg.SourceCountWeight = defaults.SourceCountWeight
	}
	if cfg.ToneWeight <= 0 {
		cfg.ToneWeight = defaults.ToneWeight
	}
	if cfg.KeywordCap <= 0 {
		cfg.KeywordCap = defaults.KeywordCap
	}
	if cfg.RecencyBonus <= 0 {
		cfg.RecencyBonus = defaults.RecencyBonus
	}
	if cfg.DecayWindow <= 0 {
		cfg.DecayWindow = defaults.DecayWindow
	}
	if cfg.MaxExpected <= 0 {
		cfg.MaxExpected = defaults.MaxExpected
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Scorer{cfg: cfg, clock: clock}
	for keyword, weight := range impactLexicon() {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		s.keywords = append(s.keywords, impactKeyword{re: re, weight: weight})
	}
	return s
}

// Score returns the intensity for a merged group's canonical item in
// [0,100].
func (s *Scorer) Score(group domain.MergedGroup, category domain.Category) int {
	item := group.Canonical

	sourceScore := math.Min(float64(group.SourceCount), 10) * s.cfg.SourceCountWeight
	toneScore := math.Abs(item.Tone) * s.cfg.ToneWeight
	keywordScore := s.keywordScore(item.Title + " " + item.Summary)
	recency := s.recencyBonus(item.Timestamp)

	raw := (sourceScore + toneScore + keywordScore + recency) * categoryMultiplier(category)

	scaled := int(math.Round(100 * raw / s.cfg.MaxExpected))
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}

func (s *Scorer) keywordScore(text string) float64 {
	text = strings.ToLower(text)
	var score float64
	for _, kw := range s.keywords {
		if n := len(kw.re.FindAllStringIndex(text, -1)); n > 0 {
			score += float64(n) * kw.weight
		}
	}
	return math.Min(score, s.cfg.KeywordCap)
}

// recencyBonus grants the full bonus inside the first hour, then decays
// linearly to zero across the decay window. Negative ages (publisher clock
// skew) get nothing rather than an inflated bonus.
func (s *Scorer) recencyBonus(ts time.Time) float64 {
	age := s.clock.Now().Sub(ts)
	if age < 0 {
		return 0
	}
	if age <= time.Hour {
		return s.cfg.RecencyBonus
	}
	if age >= s.cfg.DecayWindow {
		return 0
	}
	remaining := float64(s.cfg.DecayWindow-age) / float64(s.cfg.DecayWindow-time.Hour)
	return s.cfg.RecencyBonus * remaining
}

// categoryMultiplier weights violent and destructive events above the
// baseline and routine technology coverage below it.
func categoryMultiplier(category domain.Category) float64 {
	switch category {
	case domain.CategoryConflict:
		return 1.3
	case domain.CategoryDisaster:
		return 1.25
	case domain.CategoryHealth:
		return 1.1
	case domain.CategoryTechnology:
		return 0.8
	default:
		return 1.0
	}
}

// impactLexicon is the curated high-impact vocabulary: urgency, scale,
// severity, immediacy, and impact terms.
func impactLexicon() map[string]float64 {
	return map[string]float64{
		"catastrophic":  4,
		"devastating":   4,
		"massive":       3,
		"deadly":        3,
		"emergency":     3,
		"crisis":        3,
		"unprecedented": 3,
		"collapse":      3,
		"explosion":     3,
		"millions":      2.5,
		"urgent":        2,
		"breaking":      2,
		"major":         2,
		"critical":      2,
		"thousands":     2,
		"record":        1.5,
	}
}
