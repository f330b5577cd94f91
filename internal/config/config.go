// Package config loads all service settings from environment variables
// with startup validation: a bad value fails the process before any
// network work begins.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	PassInterval    time.Duration

	// Redis cache backend. Empty address selects the in-memory cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka event stream. No brokers disables publishing.
	KafkaBrokers []string
	KafkaTopic   string

	// GDELT structured-query feed (keyless).
	GDELTQuery    string
	GDELTCacheTTL time.Duration

	// NewsAPI headline feed.
	NewsAPIKey        string
	NewsAPICategory   string
	NewsAPIDailyQuota int
	NewsAPICacheTTL   time.Duration

	// Event Registry event-graph feed.
	EventRegistryKey          string
	EventRegistryKeyword      string
	EventRegistryMonthlyQuota int
	EventRegistryCacheTTL     time.Duration

	// Syndication feeds.
	RSSFeedURLs []string
	RSSCacheTTL time.Duration

	// Nominatim geocoder.
	NominatimBaseURL   string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	GeocodeCacheTTL    time.Duration
	GeocodeMaxPerPass  int

	// Deduplication thresholds.
	DedupSimilarity float64
	DedupRadiusKm   float64
	DedupTimeWindow time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset and rejecting values that cannot work.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "canonical-events"),

		GDELTQuery: os.Getenv("GDELT_QUERY"),

		NewsAPIKey:      os.Getenv("NEWSAPI_KEY"),
		NewsAPICategory: envOrDefault("NEWSAPI_CATEGORY", "general"),

		EventRegistryKey:     os.Getenv("EVENTREGISTRY_KEY"),
		EventRegistryKeyword: envOrDefault("EVENTREGISTRY_KEYWORD", "crisis"),

		RSSFeedURLs: splitList(os.Getenv("RSS_FEED_URLS")),

		NominatimBaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "event-radar/1.0"),
	}

	var err error
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PassInterval, err = parseDuration("PASS_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.GDELTCacheTTL, err = parseDuration("GDELT_CACHE_TTL", "15m"); err != nil {
		return nil, err
	}
	if cfg.NewsAPICacheTTL, err = parseDuration("NEWSAPI_CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.EventRegistryCacheTTL, err = parseDuration("EVENTREGISTRY_CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RSSCacheTTL, err = parseDuration("RSS_CACHE_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.NominatimTimeout, err = parseDuration("NOMINATIM_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = parseDuration("GEOCODE_CACHE_TTL", "168h"); err != nil {
		return nil, err
	}

	if cfg.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.NewsAPIDailyQuota, err = parseInt("NEWSAPI_DAILY_QUOTA", 100); err != nil {
		return nil, err
	}
	if cfg.EventRegistryMonthlyQuota, err = parseInt("EVENTREGISTRY_MONTHLY_QUOTA", 2000); err != nil {
		return nil, err
	}
	if cfg.GeocodeMaxPerPass, err = parseInt("GEOCODE_MAX_PER_PASS", 20); err != nil {
		return nil, err
	}

	if cfg.DedupSimilarity, err = parseFloat("DEDUP_SIMILARITY", 0.7); err != nil {
		return nil, err
	}
	if cfg.DedupRadiusKm, err = parseFloat("DEDUP_RADIUS_KM", 50); err != nil {
		return nil, err
	}
	if cfg.DedupTimeWindow, err = parseDuration("DEDUP_TIME_WINDOW", "24h"); err != nil {
		return nil, err
	}

	if cfg.DedupSimilarity <= 0 || cfg.DedupSimilarity > 1 {
		return nil, errors.New("DEDUP_SIMILARITY must be in (0,1]")
	}
	if cfg.DedupRadiusKm <= 0 {
		return nil, errors.New("DEDUP_RADIUS_KM must be positive")
	}
	if cfg.PassInterval < time.Minute {
		return nil, errors.New("PASS_INTERVAL must be at least 1m")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if !hasAnySource(cfg) {
		return nil, errors.New("no source configured: set at least one of GDELT_QUERY, NEWSAPI_KEY, EVENTREGISTRY_KEY, RSS_FEED_URLS")
	}

	return cfg, nil
}

func hasAnySource(cfg *Config) bool {
	return cfg.GDELTQuery != "" || cfg.NewsAPIKey != "" || cfg.EventRegistryKey != "" || len(cfg.RSSFeedURLs) > 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return f, nil
}
