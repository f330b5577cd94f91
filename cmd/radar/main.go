package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/adapter/eventregistry"
	"github.com/geowatch/event-radar/internal/adapter/gdelt"
	httpadapter "github.com/geowatch/event-radar/internal/adapter/http"
	kafkaadapter "github.com/geowatch/event-radar/internal/adapter/kafka"
	"github.com/geowatch/event-radar/internal/adapter/newsapi"
	"github.com/geowatch/event-radar/internal/adapter/nominatim"
	"github.com/geowatch/event-radar/internal/adapter/rss"
	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/classify"
	"github.com/geowatch/event-radar/internal/config"
	"github.com/geowatch/event-radar/internal/dedup"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/geo"
	"github.com/geowatch/event-radar/internal/intensity"
	"github.com/geowatch/event-radar/internal/observability"
	"github.com/geowatch/event-radar/internal/pipeline"
	"github.com/geowatch/event-radar/internal/ratelimit"
	"github.com/geowatch/event-radar/internal/store"
)

func main() {
	// Local development convenience; the file is absent in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
		logger.Info("redis cache enabled", "addr", cfg.RedisAddr)
	} else {
		c = cache.NewMemory(clock)
		logger.Info("in-memory cache enabled")
	}

	sources := buildSources(cfg, c, clock, logger)
	for _, s := range sources {
		logger.Info("source configured", "source", s.Name(), "available", s.Available())
	}

	geocoder := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, logger)
	geocodes := store.NewMemoryGeocodeStore()
	resolver := geo.NewResolver(c, geocodes, geocoder,
		ratelimit.NewBucket(1, time.Second, clock), ratelimit.DefaultRetryPolicy(),
		cfg.GeocodeCacheTTL, logger, metrics)

	events := store.NewMemoryEventStore()

	opts := pipeline.Options{GeocodeMaxPerPass: cfg.GeocodeMaxPerPass}
	var publisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		opts.Publisher = publisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(sources,
		dedup.NewEngine(dedup.Config{
			SimilarityThreshold: cfg.DedupSimilarity,
			RadiusKm:            cfg.DedupRadiusKm,
			TimeWindow:          cfg.DedupTimeWindow,
		}, clock),
		classify.New(),
		intensity.NewScorer(intensity.DefaultConfig(), clock),
		resolver, events, c, logger, metrics, clock, opts)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, events, c, 5*time.Minute, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	ticker := clock.NewTicker(cfg.PassInterval)
	go func() {
		if err := p.Run(ctx, ticker); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	ticker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildSources wires one adapter per configured feed. An adapter with no
// credentials is still constructed; it just reports unavailable and the
// pipeline skips it.
func buildSources(cfg *config.Config, c cache.Cache, clock clockwork.Clock, logger *slog.Logger) []domain.Source {
	return []domain.Source{
		gdelt.NewClient(gdelt.Config{
			Query:    cfg.GDELTQuery,
			CacheTTL: cfg.GDELTCacheTTL,
		}, c, clock, logger),
		newsapi.NewClient(newsapi.Config{
			APIKey:     cfg.NewsAPIKey,
			Category:   cfg.NewsAPICategory,
			DailyQuota: cfg.NewsAPIDailyQuota,
			CacheTTL:   cfg.NewsAPICacheTTL,
		}, c, clock, logger),
		eventregistry.NewClient(eventregistry.Config{
			APIKey:       cfg.EventRegistryKey,
			Keyword:      cfg.EventRegistryKeyword,
			MonthlyQuota: cfg.EventRegistryMonthlyQuota,
			CacheTTL:     cfg.EventRegistryCacheTTL,
		}, c, clock, logger),
		rss.NewClient(rss.Config{
			FeedURLs: cfg.RSSFeedURLs,
			CacheTTL: cfg.RSSCacheTTL,
		}, c, clock, logger),
	}
}
