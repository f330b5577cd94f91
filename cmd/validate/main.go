// Command validate checks a canonical-event JSON fixture against the
// pipeline's persistence invariants: bounded intensity, non-sentinel
// coordinates, taxonomy membership, source counts, and reproducible IDs.
//
// Usage:
//
//	go run ./cmd/validate -events testdata/canonical_events.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/geowatch/event-radar/internal/domain"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	eventsPath := flag.String("events", "", "path to canonical-event JSON fixture")
	flag.Parse()

	if *eventsPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*eventsPath))
}

func run(path string) int {
	fmt.Println("=== Canonical Event Integrity Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read fixture: %v\n", err)
		return 1
	}
	var events []domain.CanonicalEvent
	if err := json.Unmarshal(data, &events); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateBounds(events),
		validateCoordinates(events),
		validateTaxonomy(events),
		validateIdentity(events),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-40s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Events: %d\n", len(events))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateBounds checks intensity range and source counts.
func validateBounds(events []domain.CanonicalEvent) *phase {
	p := &phase{name: "Phase 1: Bounds (intensity, counts)"}
	for i, e := range events {
		if e.Intensity < 0 || e.Intensity > 100 {
			p.errorf("event %d (%s): intensity %d outside [0,100]", i, e.ID, e.Intensity)
		}
		if e.SourceCount < 1 {
			p.errorf("event %d (%s): source count %d < 1", i, e.ID, e.SourceCount)
		}
	}
	return p
}

// validateCoordinates checks that no persisted event carries the
// unresolved 0,0 sentinel or an out-of-range coordinate.
func validateCoordinates(events []domain.CanonicalEvent) *phase {
	p := &phase{name: "Phase 2: Coordinates (no sentinel)"}
	for i, e := range events {
		if !e.HasCoordinates() {
			p.errorf("event %d (%s): 0,0 location sentinel was persisted", i, e.ID)
		}
		if e.Lat < -90 || e.Lat > 90 {
			p.errorf("event %d (%s): latitude %g out of range", i, e.ID, e.Lat)
		}
		if e.Lng < -180 || e.Lng > 180 {
			p.errorf("event %d (%s): longitude %g out of range", i, e.ID, e.Lng)
		}
	}
	return p
}

// validateTaxonomy checks category membership and required fields.
func validateTaxonomy(events []domain.CanonicalEvent) *phase {
	p := &phase{name: "Phase 3: Taxonomy and required fields"}
	for i, e := range events {
		if !domain.ValidCategory(e.Category) {
			p.errorf("event %d (%s): category %q not in taxonomy", i, e.ID, e.Category)
		}
		if e.Title == "" {
			p.errorf("event %d (%s): title is empty", i, e.ID)
		}
		if e.URL == "" {
			p.errorf("event %d (%s): url is empty", i, e.ID)
		}
		if e.Timestamp.IsZero() {
			p.errorf("event %d (%s): timestamp is zero", i, e.ID)
		}
		if e.ProcessedAt.IsZero() {
			p.errorf("event %d (%s): processed_at is zero", i, e.ID)
		}
	}
	return p
}

// validateIdentity re-derives each event's ID from its title and
// coordinates and checks the stored ID matches.
func validateIdentity(events []domain.CanonicalEvent) *phase {
	p := &phase{name: "Phase 4: Identity (reproducible IDs)"}
	seen := map[string]int{}
	for i, e := range events {
		if e.ID == "" {
			p.errorf("event %d: missing ID", i)
			continue
		}
		if expected := domain.NewEventID(e.Title, e.Lat, e.Lng); e.ID != expected {
			p.errorf("event %d: ID %q does not re-derive (expected %q)", i, e.ID, expected)
		}
		if prev, dup := seen[e.ID]; dup {
			p.errorf("event %d: duplicate ID %q (also event %d)", i, e.ID, prev)
			continue
		}
		seen[e.ID] = i
	}
	return p
}
