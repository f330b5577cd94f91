package dedup

import (
	"sort"

	"github.com/geowatch/event-radar/internal/domain"
)

// Quality bonuses for canonical selection. Ordered so that any item with
// coordinates beats any without, then image, then a substantial summary,
// then tone. The age penalty only breaks ties within the same tier,
// preferring fresher reports.
const (
	bonusCoordinates = 1000.0
	bonusImage       = 500.0
	bonusSummary     = 250.0
	bonusTone        = 100.0

	longSummaryChars = 120
	agePenaltyPerMin = 0.05
)

// mergeGroup picks the highest-quality member as canonical, backfills its
// gaps from the other members, and collects the distinct sources and URLs.
func (e *Engine) mergeGroup(items []domain.RawItem, members []int) domain.MergedGroup {
	best := members[0]
	bestScore := e.qualityScore(items[best])
	for _, idx := range members[1:] {
		if score := e.qualityScore(items[idx]); score > bestScore {
			best, bestScore = idx, score
		}
	}

	canonical := items[best]
	for _, idx := range members {
		if idx == best {
			continue
		}
		canonical = backfill(canonical, items[idx])
	}

	nameSet := make(map[string]struct{}, len(members))
	urlSet := make(map[string]struct{}, len(members))
	for _, idx := range members {
		if items[idx].Source != "" {
			nameSet[items[idx].Source] = struct{}{}
		}
		if items[idx].URL != "" {
			urlSet[items[idx].URL] = struct{}{}
		}
	}

	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	urls := make([]string, 0, len(urlSet))
	for url := range urlSet {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	count := len(names)
	if count == 0 {
		count = 1
	}

	return domain.MergedGroup{
		Canonical:   canonical,
		SourceNames: names,
		SourceURLs:  urls,
		SourceCount: count,
	}
}

func (e *Engine) qualityScore(item domain.RawItem) float64 {
	var score float64
	if item.Location.HasCoordinates() {
		score += bonusCoordinates
	}
	if item.ImageURL != "" {
		score += bonusImage
	}
	if len(item.Summary) >= longSummaryChars {
		score += bonusSummary
	}
	if item.Tone != 0 {
		score += bonusTone
	}

	age := e.clock.Now().Sub(item.Timestamp)
	if age > 0 {
		score -= age.Minutes() * agePenaltyPerMin
	}
	return score
}

// backfill copies fields the canonical item is missing from another group
// member. Summaries prefer the longest available text.
func backfill(canonical, other domain.RawItem) domain.RawItem {
	if !canonical.Location.HasCoordinates() && other.Location.HasCoordinates() {
		canonical.Location.Lat = other.Location.Lat
		canonical.Location.Lng = other.Location.Lng
		if canonical.Location.Name == "" {
			canonical.Location.Name = other.Location.Name
		}
	}
	if canonical.Location.Name == "" && other.Location.Name != "" {
		canonical.Location.Name = other.Location.Name
	}
	if canonical.ImageURL == "" && other.ImageURL != "" {
		canonical.ImageURL = other.ImageURL
	}
	if len(other.Summary) > len(canonical.Summary) {
		canonical.Summary = other.Summary
	}
	if canonical.Tone == 0 && other.Tone != 0 {
		canonical.Tone = other.Tone
	}
	return canonical
}
