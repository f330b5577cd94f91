// Package newsapi ingests a keyed headline API with a daily request
// budget. The free tier resets at midnight UTC, so quota accounting uses
// calendar-day windows rather than rolling ones.
package newsapi

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
	sourceName     = "newsapi"
	defaultBaseURL = "https://newsapi.org/v2"
)

// Config carries the adapter's credentials and budget.
type Config struct {
	BaseURL    string // empty means the public endpoint
	APIKey     string
	Category   string // top-headlines category filter, e.g. "general"
	PageSize   int
	DailyQuota int           // requests per UTC day; 0 means unlimited
	CacheTTL   time.Duration // tens of minutes; the feed is quota-bound
}

// Client fetches and normalizes NewsAPI headlines.
type Client struct {
	cfg        Config
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	quota      *ratelimit.Quota
	policy     ratelimit.RetryPolicy
	cache      cache.Cache
	logger     *slog.Logger
}

// NewClient creates a NewsAPI adapter.
func NewClient(cfg Config, c cache.Cache, clock clockwork.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bucket:     ratelimit.NewBucket(10, time.Minute, clock),
		quota:      ratelimit.NewQuota(cfg.DailyQuota, ratelimit.DailyPeriod, clock),
		policy:     ratelimit.DefaultRetryPolicy(),
		cache:      c,
		logger:     logger.With("source", sourceName),
	}
}

func (c *Client) Name() string { return sourceName }

// Available reports whether a key is configured and the daily budget has
// requests left.
func (c *Client) Available() bool {
	return c.cfg.APIKey != "" && c.quota.Remaining() > 0
}

// Fetch runs one headlines pass. A cache hit costs no quota.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	key := fmt.Sprintf("feed:%s:%s", sourceName, c.cfg.Category)
	body, err := cache.GetOrCompute(ctx, c.cache, key, c.cfg.CacheTTL, c.request)
	if err != nil {
		return nil, err
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s", parsed.Status, parsed.Message)
	}

	items := make([]domain.RawItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		item, ok := mapArticle(a)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) request(ctx context.Context) ([]byte, error) {
	if !c.quota.Spend(1) {
		return nil, fmt.Errorf("newsapi daily quota exhausted")
	}
	if err := c.bucket.Acquire(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"pageSize": {strconv.Itoa(c.cfg.PageSize)},
		"language": {"en"},
	}
	if c.cfg.Category != "" {
		params.Set("category", c.cfg.Category)
	}
	fullURL := c.cfg.BaseURL + "/top-headlines?" + params.Encode()

	var body []byte
	err := ratelimit.Retry(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
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

// mapArticle normalizes one headline. The source label lives in a nested
// object; articles without a title, URL, or parsable date are dropped.
func mapArticle(a articleJSON) (domain.RawItem, bool) {
	if a.Title == "" || a.URL == "" {
		return domain.RawItem{}, false
	}
	ts, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return domain.RawItem{}, false
	}
	source := a.Source.Name
	if source == "" {
		source = sourceName
	}
	return domain.RawItem{
		Title:     a.Title,
		Summary:   a.Description,
		URL:       a.URL,
		Timestamp: ts,
		Source:    source,
		ImageURL:  a.URLToImage,
	}, true
}

// NewsAPI response types.

type response struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Articles []articleJSON `json:"articles"`
}

type articleJSON struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}
