// Package gdelt ingests the GDELT DOC 2.0 article-list API: a keyless,
// structured-query feed refreshed every 15 minutes. Responses carry a
// per-article tone score and a compact UTC timestamp format.
package gdelt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/ratelimit"
)

const (
	sourceName     = "gdelt"
	defaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	seendateLayout = "20060102T150405Z"
)

// Config carries the adapter's feed settings.
type Config struct {
	BaseURL    string        // empty means the public endpoint
	Query      string        // structured query, e.g. theme filters
	MaxRecords int           // articles per fetch
	Timespan   string        // lookback window, e.g. "1h"
	CacheTTL   time.Duration // response cache; minutes-scale feed
}

// Client fetches and normalizes GDELT articles.
type Client struct {
	cfg        Config
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	policy     ratelimit.RetryPolicy
	cache      cache.Cache
	logger     *slog.Logger
	enabled    bool
}

// NewClient creates a GDELT adapter. The feed is keyless, so enabled
// simply reflects whether a query was configured.
func NewClient(cfg Config, c cache.Cache, clock clockwork.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = 75
	}
	if cfg.Timespan == "" {
		cfg.Timespan = "1h"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bucket:     ratelimit.NewBucket(30, time.Minute, clock),
		policy:     ratelimit.DefaultRetryPolicy(),
		cache:      c,
		logger:     logger.With("source", sourceName),
		enabled:    cfg.Query != "",
	}
}

func (c *Client) Name() string { return sourceName }

// Available reports whether a query is configured. GDELT needs no key
// and has no request quota.
func (c *Client) Available() bool { return c.enabled }

// Fetch runs one pass against the article list, serving repeated passes
// within the cache TTL from the shared cache.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	key := fmt.Sprintf("feed:%s:%s", sourceName, c.cfg.Query)
	body, err := cache.GetOrCompute(ctx, c.cache, key, c.cfg.CacheTTL, c.request)
	if err != nil {
		return nil, err
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode gdelt response: %w", err)
	}

	items := make([]domain.RawItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		item, ok := c.mapArticle(a)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) request(ctx context.Context) ([]byte, error) {
	if err := c.bucket.Acquire(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":      {c.cfg.Query},
		"mode":       {"artlist"},
		"format":     {"json"},
		"maxrecords": {strconv.Itoa(c.cfg.MaxRecords)},
		"timespan":   {c.cfg.Timespan},
		"sort":       {"datedesc"},
	}
	fullURL := c.cfg.BaseURL + "?" + params.Encode()

	var body []byte
	err := ratelimit.Retry(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &ratelimit.HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// mapArticle normalizes one article, dropping it when the title, URL, or
// seendate is unusable.
func (c *Client) mapArticle(a article) (domain.RawItem, bool) {
	if a.Title == "" || a.URL == "" {
		return domain.RawItem{}, false
	}
	ts, err := time.Parse(seendateLayout, a.Seendate)
	if err != nil {
		c.logger.Debug("dropping article with bad seendate", "seendate", a.Seendate, "url", a.URL)
		return domain.RawItem{}, false
	}
	source := a.Domain
	if source == "" {
		source = sourceName
	}
	return domain.RawItem{
		Title:     a.Title,
		URL:       a.URL,
		Timestamp: ts,
		Source:    source,
		ImageURL:  a.SocialImage,
		Tone:      a.Tone,
	}, true
}

// GDELT DOC 2.0 response types.

type response struct {
	Articles []article `json:"articles"`
}

type article struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Seendate    string  `json:"seendate"`
	SocialImage string  `json:"socialimage"`
	Domain      string  `json:"domain"`
	Tone        float64 `json:"tone"`
}
