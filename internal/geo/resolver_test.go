package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/observability"
	"github.com/geowatch/event-radar/internal/ratelimit"
	"github.com/geowatch/event-radar/internal/store"
)

type fakeGeocoder struct {
	results map[string]domain.GeocodeResult
	err     error
	calls   int
}

func (g *fakeGeocoder) Search(_ context.Context, text string) (domain.GeocodeResult, bool, error) {
	g.calls++
	if g.err != nil {
		return domain.GeocodeResult{}, false, g.err
	}
	result, ok := g.results[text]
	return result, ok, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) cache.Lookup {
	return cache.BackendError(errors.New("backend down"))
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingCache) Delete(context.Context, string) error        { return errors.New("backend down") }
func (failingCache) DeletePattern(context.Context, string) error { return errors.New("backend down") }

func newTestResolver(t *testing.T, c cache.Cache, geocoder *fakeGeocoder) (*Resolver, *store.MemoryGeocodeStore) {
	t.Helper()
	geocodes := store.NewMemoryGeocodeStore()
	bucket := ratelimit.NewBucket(100, time.Second, clockwork.NewFakeClock())
	policy := ratelimit.DefaultRetryPolicy()
	r := NewResolver(c, geocodes, geocoder, bucket, policy, time.Hour,
		observability.NewTestLogger(), observability.NewMetricsForTesting())
	return r, geocodes
}

func TestResolverWritesThroughBothTiers(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(clockwork.NewFakeClock())
	geocoder := &fakeGeocoder{results: map[string]domain.GeocodeResult{
		"reykjavik": {Lat: 64.1466, Lng: -21.9426, DisplayName: "Reykjavík, Iceland", Confidence: 0.9},
	}}
	r, geocodes := newTestResolver(t, c, geocoder)

	result, ok, err := r.Resolve(ctx, "Reykjavik")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 64.1466, result.Lat, 1e-4)
	assert.Equal(t, 1, geocoder.calls)

	// Second lookup is served from cache without touching the geocoder.
	_, ok, err = r.Resolve(ctx, "  REYKJAVIK ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, geocoder.calls)

	// The durable tier was written too.
	stored, found, err := geocodes.GetGeocode(ctx, "reykjavik")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Reykjavík, Iceland", stored.DisplayName)
}

func TestResolverStoreHitBackfillsCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(clockwork.NewFakeClock())
	geocoder := &fakeGeocoder{}
	r, geocodes := newTestResolver(t, c, geocoder)

	require.NoError(t, geocodes.PutGeocode(ctx, "tromso", domain.GeocodeResult{Lat: 69.6492, Lng: 18.9553}))

	result, ok, err := r.Resolve(ctx, "Tromso")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 69.6492, result.Lat, 1e-4)
	assert.Zero(t, geocoder.calls)

	assert.True(t, c.Get(ctx, "geo:tromso").Found())
}

func TestResolverMissIsNotAnError(t *testing.T) {
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), &fakeGeocoder{})

	_, ok, err := r.Resolve(context.Background(), "xqzzy nonsense")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolverEmptyName(t *testing.T) {
	geocoder := &fakeGeocoder{}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	_, ok, err := r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, geocoder.calls)
}

func TestResolverSurfacesGeocoderError(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("provider rejected request")}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	_, ok, err := r.Resolve(context.Background(), "Oslo City Hall")
	require.Error(t, err)
	assert.False(t, ok)
	// Non-retryable errors fail fast without backoff attempts.
	assert.Equal(t, 1, geocoder.calls)
}

func TestResolverFailOpenOnBrokenCache(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]domain.GeocodeResult{
		"bergen": {Lat: 60.3913, Lng: 5.3221},
	}}
	r, _ := newTestResolver(t, failingCache{}, geocoder)

	result, ok, err := r.Resolve(context.Background(), "Bergen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 60.3913, result.Lat, 1e-4)
}

func TestResolveBatch(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]domain.GeocodeResult{
		"bergen": {Lat: 60.3913, Lng: 5.3221},
		"tromso": {Lat: 69.6492, Lng: 18.9553},
	}}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	results, err := r.ResolveBatch(context.Background(), []string{"Bergen", "unknown place", "Tromso"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results, "bergen")
	assert.Contains(t, results, "tromso")
}

func TestLocateGazetteerHitSkipsGeocoder(t *testing.T) {
	geocoder := &fakeGeocoder{}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	loc, ok := r.Locate(context.Background(), "Earthquake strikes near Tokyo")
	require.True(t, ok)
	assert.Equal(t, "Tokyo", loc.Name)
	assert.InDelta(t, 35.6762, loc.Lat, 1e-4)
	assert.Zero(t, geocoder.calls)
}

func TestLocateFallsBackToGeocoder(t *testing.T) {
	geocoder := &fakeGeocoder{results: map[string]domain.GeocodeResult{
		"ruritania": {Lat: 47.0, Lng: 15.0, DisplayName: "Ruritania"},
	}}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	loc, ok := r.Locate(context.Background(), "Will Ruritania invade Freedonia by June?")
	require.True(t, ok)
	assert.Equal(t, "Ruritania", loc.Name)
	assert.InDelta(t, 47.0, loc.Lat, 1e-4)
}

func TestLocateNoCandidates(t *testing.T) {
	geocoder := &fakeGeocoder{}
	r, _ := newTestResolver(t, cache.NewMemory(clockwork.NewFakeClock()), geocoder)

	_, ok := r.Locate(context.Background(), "markets rally on earnings beat")
	assert.False(t, ok)
	assert.Zero(t, geocoder.calls)
}
