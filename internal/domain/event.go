package domain

// NewCanonicalEvent builds the persisted form of a merged group once the
// classifier and scorer have run. The group's canonical item supplies every
// descriptive field; ProcessedAt comes from the package clock.
func NewCanonicalEvent(group MergedGroup, category Category, intensity int) CanonicalEvent {
	item := group.Canonical
	return CanonicalEvent{
		ID:          NewEventID(item.Title, item.Location.Lat, item.Location.Lng),
		Title:       item.Title,
		Summary:     item.Summary,
		Lat:         item.Location.Lat,
		Lng:         item.Location.Lng,
		Timestamp:   item.Timestamp,
		SourceLabel: item.Source,
		Category:    category,
		Intensity:   clampIntensity(intensity),
		URL:         item.URL,
		ImageURL:    item.ImageURL,
		Tone:        item.Tone,
		SourceCount: group.SourceCount,
		ProcessedAt: clock.Now(),
	}
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
