package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]+`)

// NormalizeTitle lowercases a title, strips punctuation, and collapses
// whitespace. Used for both dedup similarity and event identity, so two
// rewrites of the same headline converge on the same form.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = nonAlnumRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// NewEventID produces a deterministic ID from the event's normalized title
// and a 0.1-degree coordinate cell. Deterministic IDs make the persistence
// upsert idempotent: reprocessing the same reports yields the same ID, so
// repeated runs merge instead of duplicating rows.
func NewEventID(title string, lat, lng float64) string {
	input := fmt.Sprintf("%s|%.1f|%.1f", NormalizeTitle(title), lat, lng)
	hash := sha256.Sum256([]byte(input))
	return "evt-" + hex.EncodeToString(hash[:8])
}
