package domain

import "context"

// GeocodeResult is a resolved place. Immutable once cached.
type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"` // 0.0–1.0 provider confidence score
}

// Geocoder resolves free-text place names to coordinates. Implementations
// talk to an external service subject to a documented rate ceiling; callers
// are responsible for admission control.
type Geocoder interface {
	// Search resolves text to a place. A miss returns ok=false with a nil
	// error; errors are reserved for transport and provider failures.
	Search(ctx context.Context, text string) (GeocodeResult, bool, error)
}
