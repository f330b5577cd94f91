package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/observability"
	"github.com/geowatch/event-radar/internal/ratelimit"
	"github.com/geowatch/event-radar/internal/store"
)

const cacheKeyPrefix = "geo:"

var keyNormRe = regexp.MustCompile(`\s+`)

// NormalizePlaceName lowercases and collapses whitespace so that
// "  New  York" and "new york" share one cache entry.
func NormalizePlaceName(name string) string {
	return keyNormRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
}

// Resolver resolves place names through three tiers: the shared cache,
// the durable geocode store, and the live geocoder behind a rate-limit
// bucket with retries. Both cache tiers are written through on a live hit.
type Resolver struct {
	cache    cache.Cache
	geocodes store.GeocodeStore
	geocoder domain.Geocoder
	bucket   *ratelimit.Bucket
	policy   ratelimit.RetryPolicy
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver wires a resolver. bucket governs live geocoder calls only;
// cache and store lookups are never throttled.
func NewResolver(c cache.Cache, geocodes store.GeocodeStore, geocoder domain.Geocoder, bucket *ratelimit.Bucket, policy ratelimit.RetryPolicy, cacheTTL time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		cache:    c,
		geocodes: geocodes,
		geocoder: geocoder,
		bucket:   bucket,
		policy:   policy,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "geo_resolver"),
		metrics:  metrics,
	}
}

// Resolve maps a place name to coordinates. A name the geocoder cannot
// place returns ok=false with a nil error; errors mean the live lookup
// failed after retries. Cache-tier failures degrade to the next tier.
func (r *Resolver) Resolve(ctx context.Context, name string) (domain.GeocodeResult, bool, error) {
	normalized := NormalizePlaceName(name)
	if normalized == "" {
		return domain.GeocodeResult{}, false, nil
	}
	key := cacheKeyPrefix + normalized

	lookup := r.cache.Get(ctx, key)
	if lookup.State == cache.StateError {
		r.logger.Warn("geocode cache read failed", "name", normalized, "error", lookup.Err)
	}
	if lookup.Found() {
		var result domain.GeocodeResult
		if err := json.Unmarshal(lookup.Value, &result); err == nil {
			r.metrics.GeocodeCache.WithLabelValues("redis", "hit").Inc()
			return result, true, nil
		}
	}
	r.metrics.GeocodeCache.WithLabelValues("redis", "miss").Inc()

	if result, ok, err := r.geocodes.GetGeocode(ctx, normalized); err != nil {
		r.logger.Warn("geocode store read failed", "name", normalized, "error", err)
	} else if ok {
		r.metrics.GeocodeCache.WithLabelValues("store", "hit").Inc()
		r.writeCache(ctx, key, result)
		return result, true, nil
	}
	r.metrics.GeocodeCache.WithLabelValues("store", "miss").Inc()

	if err := r.bucket.Acquire(ctx); err != nil {
		return domain.GeocodeResult{}, false, err
	}

	var (
		result domain.GeocodeResult
		found  bool
	)
	err := ratelimit.Retry(ctx, r.policy, func() error {
		var searchErr error
		result, found, searchErr = r.geocoder.Search(ctx, normalized)
		return searchErr
	})
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodeResult{}, false, err
	}
	if !found {
		r.metrics.GeocodeRequests.WithLabelValues("miss").Inc()
		return domain.GeocodeResult{}, false, nil
	}
	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()

	if err := r.geocodes.PutGeocode(ctx, normalized, result); err != nil {
		r.logger.Warn("geocode store write failed", "name", normalized, "error", err)
	}
	r.writeCache(ctx, key, result)
	return result, true, nil
}

// ResolveBatch resolves names strictly in order, stopping at the first
// context error. Individual failures and misses produce no entry for that
// name; the map never contains partial results.
func (r *Resolver) ResolveBatch(ctx context.Context, names []string) (map[string]domain.GeocodeResult, error) {
	results := make(map[string]domain.GeocodeResult, len(names))
	for _, name := range names {
		result, ok, err := r.Resolve(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			r.logger.Warn("batch geocode failed", "name", name, "error", err)
			continue
		}
		if ok {
			results[NormalizePlaceName(name)] = result
		}
	}
	return results, nil
}

// Locate extracts candidates from text and resolves the strongest one.
// Gazetteer hits carry their own coordinates and skip the geocoder
// entirely; unresolved candidates are tried in confidence order.
func (r *Resolver) Locate(ctx context.Context, text string) (domain.Location, bool) {
	extraction := Extract(text)
	for _, candidate := range extraction.Candidates {
		if candidate.Lat != 0 || candidate.Lng != 0 {
			return domain.Location{Lat: candidate.Lat, Lng: candidate.Lng, Name: candidate.Name}, true
		}
		result, ok, err := r.Resolve(ctx, candidate.Name)
		if err != nil {
			r.logger.Warn("locate geocode failed", "name", candidate.Name, "error", err)
			continue
		}
		if ok {
			return domain.Location{Lat: result.Lat, Lng: result.Lng, Name: result.DisplayName}, true
		}
	}
	return domain.Location{}, false
}

func (r *Resolver) writeCache(ctx context.Context, key string, result domain.GeocodeResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, payload, r.cacheTTL); err != nil {
		r.logger.Warn("geocode cache write failed", "key", key, "error", err)
	}
}
