// Package geo extracts place names from free text and resolves them to
// coordinates through a tiered, rate-limited geocoding path.
package geo

import (
	"regexp"
	"sort"
	"strings"
)

// CandidateKind classifies an extracted location candidate.
type CandidateKind string

const (
	KindCountry      CandidateKind = "country"
	KindCity         CandidateKind = "city"
	KindRegion       CandidateKind = "region"
	KindOrganization CandidateKind = "organization"
)

// Candidate is one named location extracted from text. Lat/Lng are zero
// when the name missed every gazetteer and still needs geocoding.
type Candidate struct {
	Name       string
	Lat        float64
	Lng        float64
	Confidence float64
	Kind       CandidateKind
}

// Extraction is the full result for one text: candidates ordered by
// descending confidence, plus their mean confidence (0 when empty).
type Extraction struct {
	Candidates []Candidate
	Confidence float64
}

// Extraction layer confidences. Hand-authored patterns know the question
// shape they match; the bare gazetteer scan is the weakest signal.
const (
	confidencePattern = 0.9
	confidenceCountry = 0.75
	confidenceCity    = 0.7
	confidenceOrg     = 0.55
	confidenceUnknown = 0.4
)

var (
	// Recurring prediction-market question shapes: "Will X invade Y
	// before ...", "Will X strike Y in 2026".
	marketActionRe = regexp.MustCompile(
		`(?i)\bwill\s+([a-z][a-z .'-]{1,40}?)\s+(?:invade|attack|strike|capture|annex|blockade|bomb)\s+([a-z][a-z .'-]{1,40}?)(?:\s+(?:by|before|in|during)\b|[?.,]|$)`)

	// "Russia-Ukraine war", "India–Pakistan border tensions".
	conflictPairRe = regexp.MustCompile(
		`([A-Z][a-z]+)\s*[-–]\s*([A-Z][a-z]+)\s+(?:war|conflict|border|tensions|talks)`)

	// Prepositional place references: "explosion in Beirut",
	// "flooding near Jakarta".
	prepositionRe = regexp.MustCompile(
		`\b(?:in|near|across|outside|throughout)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`)

	properRunRe = regexp.MustCompile(`[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2}`)
)

// Extract produces location candidates from free text using three layers
// in priority order: hand-authored market patterns, the organization
// gazetteer, and a proper-noun scan against the country/city gazetteers.
// Candidates are deduplicated by coordinate; unresolved names dedupe by
// name.
func Extract(text string) Extraction {
	var candidates []Candidate

	for _, m := range marketActionRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, patternCandidate(m[1]), patternCandidate(m[2]))
	}
	for _, m := range conflictPairRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, patternCandidate(m[1]), patternCandidate(m[2]))
	}

	lower := strings.ToLower(text)
	for org, members := range orgGazetteer {
		if !strings.Contains(lower, org) {
			continue
		}
		n := len(members)
		if n > maxOrgMembers {
			n = maxOrgMembers
		}
		for _, member := range members[:n] {
			if p, ok := lookupPlace(member); ok {
				candidates = append(candidates, Candidate{
					Name:       p.name,
					Lat:        p.lat,
					Lng:        p.lng,
					Confidence: confidenceOrg,
					Kind:       KindOrganization,
				})
			}
		}
	}

	for _, m := range prepositionRe.FindAllStringSubmatch(text, -1) {
		if c, ok := gazetteerCandidate(m[1], confidenceCity); ok {
			candidates = append(candidates, c)
		}
	}
	for _, run := range properRunRe.FindAllString(text, -1) {
		if c, ok := gazetteerCandidate(run, 0); ok {
			candidates = append(candidates, c)
		}
	}

	candidates = dedupeCandidates(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	var total float64
	for _, c := range candidates {
		total += c.Confidence
	}
	confidence := 0.0
	if len(candidates) > 0 {
		confidence = total / float64(len(candidates))
	}
	return Extraction{Candidates: candidates, Confidence: confidence}
}

// patternCandidate resolves a pattern capture against the gazetteers,
// keeping the candidate even on a miss so the geocoder can try the name.
func patternCandidate(name string) Candidate {
	name = strings.TrimSpace(name)
	if p, ok := lookupPlace(name); ok {
		return Candidate{Name: p.name, Lat: p.lat, Lng: p.lng, Confidence: confidencePattern, Kind: kindOf(p.name)}
	}
	return Candidate{Name: name, Confidence: confidenceUnknown, Kind: KindRegion}
}

// gazetteerCandidate tries the full run first, then its individual words,
// so "eastern Tokyo suburb" still matches "Tokyo".
func gazetteerCandidate(run string, confidenceOverride float64) (Candidate, bool) {
	tryNames := append([]string{run}, strings.Fields(run)...)
	for _, name := range tryNames {
		p, ok := lookupPlace(name)
		if !ok {
			continue
		}
		kind := kindOf(p.name)
		confidence := confidenceCity
		if kind == KindCountry {
			confidence = confidenceCountry
		}
		if confidenceOverride > confidence {
			confidence = confidenceOverride
		}
		return Candidate{Name: p.name, Lat: p.lat, Lng: p.lng, Confidence: confidence, Kind: kind}, true
	}
	return Candidate{}, false
}

func kindOf(name string) CandidateKind {
	if _, ok := countryGazetteer[strings.ToLower(name)]; ok {
		return KindCountry
	}
	return KindCity
}

func dedupeCandidates(candidates []Candidate) []Candidate {
	type coordKey struct{ lat, lng float64 }
	seenCoord := make(map[coordKey]int)
	seenName := make(map[string]int)

	out := candidates[:0]
	for _, c := range candidates {
		if c.Lat != 0 || c.Lng != 0 {
			key := coordKey{c.Lat, c.Lng}
			if idx, ok := seenCoord[key]; ok {
				if c.Confidence > out[idx].Confidence {
					out[idx] = c
				}
				continue
			}
			seenCoord[key] = len(out)
			out = append(out, c)
			continue
		}

		nameKey := strings.ToLower(c.Name)
		if idx, ok := seenName[nameKey]; ok {
			if c.Confidence > out[idx].Confidence {
				out[idx] = c
			}
			continue
		}
		seenName[nameKey] = len(out)
		out = append(out, c)
	}
	return out
}
