// Package pipeline orchestrates one ingestion pass: concurrent source
// fetches, deduplication, location resolution, classification, scoring,
// idempotent persistence, and cache invalidation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/classify"
	"github.com/geowatch/event-radar/internal/dedup"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/intensity"
	"github.com/geowatch/event-radar/internal/observability"
	"github.com/geowatch/event-radar/internal/store"
)

// Invalidated after every pass that persists events, so read paths see
// fresh data on their next request.
var invalidationPrefixes = []string{"events:", "heatmap:"}

// Locator resolves free text to a location. Implemented by geo.Resolver.
type Locator interface {
	Locate(ctx context.Context, text string) (domain.Location, bool)
}

// Publisher streams persisted events downstream. Implemented by
// kafka.Publisher; nil disables publishing.
type Publisher interface {
	PublishBatch(ctx context.Context, events []domain.CanonicalEvent) error
}

// Pipeline runs ingestion passes over a fixed set of sources.
type Pipeline struct {
	sources    []domain.Source
	engine     *dedup.Engine
	classifier *classify.Classifier
	scorer     *intensity.Scorer
	locator    Locator
	events     store.EventStore
	cache      cache.Cache
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock

	geocodeMaxPerPass int
	running           atomic.Bool
	ready             atomic.Bool
}

// Options carries the optional pieces of a pipeline.
type Options struct {
	Publisher         Publisher // nil disables streaming
	GeocodeMaxPerPass int       // live geocoder budget per pass
}

// New creates a pipeline over the given sources and stages.
func New(sources []domain.Source, engine *dedup.Engine, classifier *classify.Classifier, scorer *intensity.Scorer, locator Locator, events store.EventStore, c cache.Cache, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, opts Options) *Pipeline {
	if opts.GeocodeMaxPerPass <= 0 {
		opts.GeocodeMaxPerPass = 20
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		sources:           sources,
		engine:            engine,
		classifier:        classifier,
		scorer:            scorer,
		locator:           locator,
		events:            events,
		cache:             c,
		publisher:         opts.Publisher,
		logger:            logger.With("component", "pipeline"),
		metrics:           metrics,
		clock:             clock,
		geocodeMaxPerPass: opts.GeocodeMaxPerPass,
	}
}

// CheckReadiness returns nil once at least one pass has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no pass completed yet")
	}
	return nil
}

// Run executes passes on every tick until the context is cancelled, with
// one pass started immediately. A tick that fires while a pass is still
// running is skipped rather than queued.
func (p *Pipeline) Run(ctx context.Context, ticker clockwork.Ticker) error {
	go p.runGuarded(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			go p.runGuarded(ctx)
		}
	}
}

func (p *Pipeline) runGuarded(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Warn("pass still running, skipping tick")
		return
	}
	defer p.running.Store(false)

	if err := p.RunPass(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("pass failed", "error", err)
	}
}

// RunPass executes one complete ingestion pass. It either completes with
// whatever data the sources produced or returns the persistence error;
// individual source failures never abort the pass.
func (p *Pipeline) RunPass(ctx context.Context) error {
	start := p.clock.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	items := p.fetchAll(ctx)
	groups := p.engine.Merge(items)
	p.metrics.GroupsPerPass.Observe(float64(len(groups)))
	p.logger.Info("pass deduplicated", "items", len(items), "groups", len(groups))

	p.resolveLocations(ctx, groups)

	events := make([]domain.CanonicalEvent, 0, len(groups))
	for _, group := range groups {
		category := p.classifier.Classify(group.Canonical)
		score := p.scorer.Score(group, category)
		event := domain.NewCanonicalEvent(group, category, score)
		if !event.HasCoordinates() {
			p.metrics.EventsDropped.Inc()
			continue
		}
		events = append(events, event)
	}

	if len(events) > 0 {
		inserted, err := p.events.UpsertEvents(ctx, events)
		if err != nil {
			p.metrics.PersistFailures.Inc()
			return err
		}
		p.metrics.EventsPersisted.Add(float64(len(events)))
		p.logger.Info("pass persisted", "events", len(events), "inserted", inserted)

		p.invalidate(ctx)
		p.publish(ctx, events)
	}

	p.ready.Store(true)
	p.metrics.PassDuration.Observe(p.clock.Now().Sub(start).Seconds())
	return nil
}

// fetchAll fans out over every source concurrently and flattens the
// results. Unavailable sources are skipped; a failed fetch contributes an
// empty result and is logged, never propagated.
func (p *Pipeline) fetchAll(ctx context.Context) []domain.RawItem {
	results := make([][]domain.RawItem, len(p.sources))

	var g errgroup.Group
	for i, source := range p.sources {
		g.Go(func() error {
			if !source.Available() {
				p.metrics.SourcesSkipped.WithLabelValues(source.Name()).Inc()
				p.logger.Info("source unavailable, skipping", "source", source.Name())
				return nil
			}
			items, err := source.Fetch(ctx)
			if err != nil {
				p.metrics.FetchFailures.WithLabelValues(source.Name()).Inc()
				p.logger.Error("fetch failed", "source", source.Name(), "error", err)
				return nil
			}
			p.metrics.ItemsFetched.WithLabelValues(source.Name()).Add(float64(len(items)))
			results[i] = items
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors

	var items []domain.RawItem
	for _, r := range results {
		items = append(items, r...)
	}
	return items
}

// resolveLocations fills in coordinates for groups whose canonical item
// has none, extracting place names from the title and summary. Live
// geocoder calls are capped per pass; groups beyond the cap stay
// unresolved and are dropped later.
func (p *Pipeline) resolveLocations(ctx context.Context, groups []domain.MergedGroup) {
	budget := p.geocodeMaxPerPass
	for i := range groups {
		if groups[i].Canonical.Location.HasCoordinates() {
			continue
		}
		if budget <= 0 {
			return
		}
		budget--
		text := groups[i].Canonical.Title
		if groups[i].Canonical.Summary != "" {
			text += " " + groups[i].Canonical.Summary
		}
		if loc, ok := p.locator.Locate(ctx, text); ok {
			groups[i].Canonical.Location = loc
		}
	}
}

// invalidate clears the read-path cache prefixes. Failures are logged
// only: stale reads age out on their own TTL.
func (p *Pipeline) invalidate(ctx context.Context) {
	for _, prefix := range invalidationPrefixes {
		if err := p.cache.DeletePattern(ctx, prefix); err != nil {
			p.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

// publish streams the pass's events downstream. Publish failures do not
// fail the pass: the store is the source of truth.
func (p *Pipeline) publish(ctx context.Context, events []domain.CanonicalEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishBatch(ctx, events); err != nil {
		p.logger.Error("publish failed", "error", err, "events", len(events))
	}
}
