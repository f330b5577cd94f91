// Package rss ingests plain syndication feeds. Feeds carry no sentiment
// of their own, so titles and summaries run through a VADER analyzer to
// produce the tone score the rest of the pipeline expects.
package rss

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/jonreiter/govader"
	"github.com/mmcdole/gofeed"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/ratelimit"
)

const (
	sourceName      = "rss"
	maxSummaryChars = 500
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Config carries the adapter's feed list.
type Config struct {
	FeedURLs []string
	CacheTTL time.Duration
}

// Client fetches and normalizes syndication feeds.
type Client struct {
	cfg      Config
	parser   *gofeed.Parser
	analyzer *govader.SentimentIntensityAnalyzer
	bucket   *ratelimit.Bucket
	cache    cache.Cache
	logger   *slog.Logger
}

// NewClient creates an RSS adapter over the configured feed URLs.
func NewClient(cfg Config, c cache.Cache, clock clockwork.Clock, logger *slog.Logger) *Client {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	valid := make([]string, 0, len(cfg.FeedURLs))
	for _, u := range cfg.FeedURLs {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			valid = append(valid, u)
		}
	}
	cfg.FeedURLs = valid

	return &Client{
		cfg:      cfg,
		parser:   gofeed.NewParser(),
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		bucket:   ratelimit.NewBucket(30, time.Minute, clock),
		cache:    c,
		logger:   logger.With("source", sourceName),
	}
}

func (c *Client) Name() string { return sourceName }

// Available reports whether any feed URL survived validation.
func (c *Client) Available() bool { return len(c.cfg.FeedURLs) > 0 }

// Fetch parses every configured feed sequentially. A single broken feed
// is logged and skipped rather than failing the pass.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	var items []domain.RawItem
	var failures int
	for _, feedURL := range c.cfg.FeedURLs {
		feedItems, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			c.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
			failures++
			continue
		}
		items = append(items, feedItems...)
	}
	if failures == len(c.cfg.FeedURLs) && failures > 0 {
		return nil, fmt.Errorf("all %d feeds failed", failures)
	}
	return items, nil
}

// fetchFeed parses one feed, serving repeats within the TTL from the
// shared cache as pre-normalized items.
func (c *Client) fetchFeed(ctx context.Context, feedURL string) ([]domain.RawItem, error) {
	key := "feed:" + sourceName + ":" + feedURL
	body, err := cache.GetOrCompute(ctx, c.cache, key, c.cfg.CacheTTL, func(ctx context.Context) ([]byte, error) {
		items, err := c.parseFeed(ctx, feedURL)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}

	var items []domain.RawItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode cached feed: %w", err)
	}
	return items, nil
}

func (c *Client) parseFeed(ctx context.Context, feedURL string) ([]domain.RawItem, error) {
	if err := c.bucket.Acquire(ctx); err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	feedTitle := strings.TrimSpace(feed.Title)
	if feedTitle == "" {
		feedTitle = sourceName
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item, ok := c.mapEntry(entry, feedTitle)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// mapEntry normalizes one feed entry: tags are stripped from the
// summary, over-long text is truncated, and tone comes from the VADER
// compound score rescaled to the [-10,10] convention.
func (c *Client) mapEntry(entry *gofeed.Item, feedTitle string) (domain.RawItem, bool) {
	title := strings.TrimSpace(stripHTML(entry.Title))
	if title == "" || entry.Link == "" {
		return domain.RawItem{}, false
	}

	var ts time.Time
	switch {
	case entry.PublishedParsed != nil:
		ts = *entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		ts = *entry.UpdatedParsed
	default:
		return domain.RawItem{}, false
	}

	summary := truncate(strings.TrimSpace(stripHTML(entry.Description)), maxSummaryChars)

	var imageURL string
	if entry.Image != nil {
		imageURL = entry.Image.URL
	}

	scores := c.analyzer.PolarityScores(title + " " + summary)

	return domain.RawItem{
		Title:     title,
		Summary:   summary,
		URL:       entry.Link,
		Timestamp: ts.UTC(),
		Source:    feedTitle,
		ImageURL:  imageURL,
		Tone:      scores.Compound * 10,
	}, true
}

func stripHTML(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// The byte cut may land inside a multibyte rune; back it up to the
	// nearest rune boundary before looking for a word boundary.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
