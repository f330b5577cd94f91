// Package classify assigns each event one category from the fixed taxonomy
// using weighted keyword scoring plus feed-provided theme hints.
package classify

import (
	"regexp"
	"strings"

	"github.com/geowatch/event-radar/internal/domain"
)

// Theme hints come straight from the upstream feed's own tagging, so one
// hint outweighs any single keyword hit.
const (
	themeHintBonus = 10.0

	// Strongly negative tone correlates with both armed conflict and
	// disasters; below this threshold both categories get a nudge.
	negativeToneThreshold = -6.0
	negativeToneBonus     = 3.0
)

// defaultCategory is the fallback when neither keywords, hints, nor the
// source name say anything.
const defaultCategory = domain.CategoryPolitics

type weightedKeyword struct {
	re     *regexp.Regexp
	weight float64
}

// Classifier holds the compiled keyword tables. Safe for concurrent use.
type Classifier struct {
	keywords map[domain.Category][]weightedKeyword
	themes   map[string]domain.Category
}

// New compiles the static keyword and theme tables.
func New() *Classifier {
	themes := make(map[string]domain.Category)
	for token, category := range themeTable() {
		themes[normalizeTheme(token)] = category
	}
	c := &Classifier{
		keywords: make(map[domain.Category][]weightedKeyword),
		themes:   themes,
	}
	for category, list := range keywordTable() {
		compiled := make([]weightedKeyword, 0, len(list))
		for keyword, weight := range list {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			compiled = append(compiled, weightedKeyword{re: re, weight: weight})
		}
		c.keywords[category] = compiled
	}
	return c
}

// Classify scores the item against every category and returns the winner.
// Ties resolve to the first-declared category; all-zero scores fall back
// to a source-name heuristic and finally the default category.
func (c *Classifier) Classify(item domain.RawItem) domain.Category {
	text := strings.ToLower(item.Title + " " + item.Summary)

	scores := make(map[domain.Category]float64, len(c.keywords))
	for category, list := range c.keywords {
		for _, kw := range list {
			if n := len(kw.re.FindAllStringIndex(text, -1)); n > 0 {
				scores[category] += float64(n) * kw.weight
			}
		}
	}

	for _, hint := range item.ThemeHints {
		if category, ok := c.themes[normalizeTheme(hint)]; ok {
			scores[category] += themeHintBonus
		}
	}

	if item.Tone < negativeToneThreshold {
		scores[domain.CategoryConflict] += negativeToneBonus
		scores[domain.CategoryDisaster] += negativeToneBonus
	}

	var best domain.Category
	var bestScore float64
	for _, category := range domain.Categories() {
		if scores[category] > bestScore {
			best, bestScore = category, scores[category]
		}
	}
	if bestScore > 0 {
		return best
	}

	if category, ok := sourceHeuristic(item.Source); ok {
		return category
	}
	return defaultCategory
}

func sourceHeuristic(source string) (domain.Category, bool) {
	s := strings.ToLower(source)
	switch {
	case strings.Contains(s, "tech"):
		return domain.CategoryTechnology, true
	case strings.Contains(s, "health") || strings.Contains(s, "med"):
		return domain.CategoryHealth, true
	case strings.Contains(s, "finance") || strings.Contains(s, "market") || strings.Contains(s, "business"):
		return domain.CategoryEconomics, true
	default:
		return "", false
	}
}

func keywordTable() map[domain.Category]map[string]float64 {
	return map[domain.Category]map[string]float64{
		domain.CategoryConflict: {
			"war": 3, "invasion": 3, "airstrike": 3, "bombing": 3,
			"missile": 2.5, "shelling": 2.5, "hostage": 2.5, "coup": 2.5,
			"troops": 2, "ceasefire": 2, "offensive": 2, "insurgent": 2,
			"attack": 2, "conflict": 2, "military": 1.5, "fighting": 1.5,
		},
		domain.CategoryPolitics: {
			"election": 3, "impeachment": 3, "referendum": 2.5,
			"parliament": 2, "sanctions": 2, "legislation": 2, "senate": 2,
			"diplomat": 2, "treaty": 2, "president": 1.5, "minister": 1.5,
			"vote": 1.5, "campaign": 1.5, "coalition": 1.5,
		},
		domain.CategoryDisaster: {
			"earthquake": 3, "quake": 3, "tsunami": 3, "hurricane": 3,
			"wildfire": 3, "tornado": 3, "cyclone": 3, "typhoon": 3,
			"flood": 2.5, "flooding": 2.5, "eruption": 2.5, "landslide": 2.5,
			"aftershock": 2.5, "magnitude": 2, "evacuation": 2, "drought": 2,
		},
		domain.CategoryEconomics: {
			"recession": 3, "inflation": 2.5, "bailout": 2.5,
			"unemployment": 2.5, "central bank": 2.5, "gdp": 2, "tariff": 2,
			"interest rate": 2, "markets": 1.5, "stocks": 1.5, "currency": 1.5,
		},
		domain.CategoryHealth: {
			"outbreak": 3, "pandemic": 3, "epidemic": 3, "virus": 2.5,
			"vaccine": 2.5, "cholera": 2.5, "quarantine": 2.5, "infection": 2,
			"disease": 2, "hospital": 1.5,
		},
		domain.CategoryTechnology: {
			"data breach": 3, "cyberattack": 3, "artificial intelligence": 2.5,
			"semiconductor": 2.5, "software": 2, "startup": 2, "hack": 2,
			"rocket launch": 2, "satellite": 1.5, "chip": 1.5,
		},
		domain.CategoryEnvironment: {
			"deforestation": 3, "climate": 2.5, "emissions": 2.5,
			"pollution": 2.5, "biodiversity": 2.5, "glacier": 2.5,
			"warming": 2, "carbon": 2, "conservation": 2,
		},
	}
}

var themeNormRe = regexp.MustCompile(`[^A-Z0-9]+`)

// normalizeTheme collapses the feeds' differing token conventions
// (ARMED_CONFLICT, ARMEDCONFLICT, "Armed conflict") into one lookup form.
func normalizeTheme(hint string) string {
	return themeNormRe.ReplaceAllString(strings.ToUpper(hint), "")
}

// themeTable maps upstream theme tokens (GDELT GKG codes and event-graph
// concept labels) to taxonomy categories. Keys are normalized before
// lookup, so separator differences between feeds do not matter.
func themeTable() map[string]domain.Category {
	return map[string]domain.Category{
		"ARMEDCONFLICT":     domain.CategoryConflict,
		"TERROR":            domain.CategoryConflict,
		"MILITARY":          domain.CategoryConflict,
		"ELECTION":          domain.CategoryPolitics,
		"PROTEST":           domain.CategoryPolitics,
		"GOVERNMENT":        domain.CategoryPolitics,
		"NATURAL_DISASTER":  domain.CategoryDisaster,
		"DISASTER":          domain.CategoryDisaster,
		"EARTHQUAKE":        domain.CategoryDisaster,
		"ECON_STOCKMARKET":  domain.CategoryEconomics,
		"ECON_INFLATION":    domain.CategoryEconomics,
		"STOCK_MARKET":      domain.CategoryEconomics,
		"INFLATION":         domain.CategoryEconomics,
		"TRADE":             domain.CategoryEconomics,
		"HEALTH_PANDEMIC":   domain.CategoryHealth,
		"PANDEMIC":          domain.CategoryHealth,
		"MEDICAL":           domain.CategoryHealth,
		"SCIENCE":           domain.CategoryTechnology,
		"CYBER_ATTACK":      domain.CategoryTechnology,
		"ENV_CLIMATECHANGE": domain.CategoryEnvironment,
		"CLIMATE_CHANGE":    domain.CategoryEnvironment,
		"ENV_POLLUTION":     domain.CategoryEnvironment,
		"POLLUTION":         domain.CategoryEnvironment,
	}
}
