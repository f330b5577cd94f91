// Package eventregistry ingests an event-graph article API with a
// monthly token budget. Articles arrive with concept annotations and a
// native location and sentiment, which map onto theme hints and item
// coordinates directly.
package eventregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/geowatch/event-radar/internal/cache"
	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/ratelimit"
)

const (
	sourceName     = "eventregistry"
	defaultBaseURL = "https://eventregistry.org/api/v1"
	dateTimeLayout = "2006-01-02T15:04:05Z"
)

// Config carries the adapter's credentials and budget.
type Config struct {
	BaseURL      string // empty means the public endpoint
	APIKey       string
	Keyword      string // article keyword filter
	Count        int
	MonthlyQuota int           // tokens per UTC month; 0 means unlimited
	CacheTTL     time.Duration
}

// Client fetches and normalizes Event Registry articles.
type Client struct {
	cfg        Config
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	quota      *ratelimit.Quota
	policy     ratelimit.RetryPolicy
	cache      cache.Cache
	logger     *slog.Logger
}

// NewClient creates an Event Registry adapter.
func NewClient(cfg Config, c cache.Cache, clock clockwork.Clock, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Count <= 0 {
		cfg.Count = 50
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bucket:     ratelimit.NewBucket(5, time.Minute, clock),
		quota:      ratelimit.NewQuota(cfg.MonthlyQuota, ratelimit.MonthlyPeriod, clock),
		policy:     ratelimit.DefaultRetryPolicy(),
		cache:      c,
		logger:     logger.With("source", sourceName),
	}
}

func (c *Client) Name() string { return sourceName }

// Available reports whether a key is configured and the monthly budget
// has tokens left.
func (c *Client) Available() bool {
	return c.cfg.APIKey != "" && c.quota.Remaining() > 0
}

// Fetch runs one article pass. A cache hit costs no quota.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	key := fmt.Sprintf("feed:%s:%s", sourceName, c.cfg.Keyword)
	body, err := cache.GetOrCompute(ctx, c.cache, key, c.cfg.CacheTTL, c.request)
	if err != nil {
		return nil, err
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode eventregistry response: %w", err)
	}

	items := make([]domain.RawItem, 0, len(parsed.Articles.Results))
	for _, a := range parsed.Articles.Results {
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
		return nil, fmt.Errorf("eventregistry monthly quota exhausted")
	}
	if err := c.bucket.Acquire(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"apiKey":                 {c.cfg.APIKey},
		"keyword":                {c.cfg.Keyword},
		"articlesCount":          {strconv.Itoa(c.cfg.Count)},
		"articlesSortBy":         {"date"},
		"includeArticleConcepts": {"true"},
		"includeArticleLocation": {"true"},
		"lang":                   {"eng"},
	}
	fullURL := c.cfg.BaseURL + "/article/getArticles?" + params.Encode()

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

// mapArticle normalizes one article. Concept URIs become uppercase theme
// hints; the native sentiment is rescaled from [-1,1] to the [-10,10]
// convention the scorer expects.
func mapArticle(a articleJSON) (domain.RawItem, bool) {
	if a.Title == "" || a.URL == "" {
		return domain.RawItem{}, false
	}
	ts, err := time.Parse(dateTimeLayout, a.DateTime)
	if err != nil {
		return domain.RawItem{}, false
	}

	hints := make([]string, 0, len(a.Concepts))
	for _, concept := range a.Concepts {
		if concept.Label.Eng == "" {
			continue
		}
		hint := strings.ToUpper(strings.ReplaceAll(concept.Label.Eng, " ", "_"))
		hints = append(hints, hint)
	}

	source := a.Source.Title
	if source == "" {
		source = sourceName
	}

	item := domain.RawItem{
		Title:      a.Title,
		Summary:    a.Body,
		URL:        a.URL,
		Timestamp:  ts,
		Source:     source,
		ImageURL:   a.Image,
		Tone:       a.Sentiment * 10,
		ThemeHints: hints,
	}
	if a.Location != nil && (a.Location.Lat != 0 || a.Location.Long != 0) {
		item.Location = domain.Location{
			Lat:  a.Location.Lat,
			Lng:  a.Location.Long,
			Name: a.Location.Label.Eng,
		}
	}
	return item, true
}

// Event Registry response types.

type response struct {
	Articles struct {
		Results []articleJSON `json:"results"`
	} `json:"articles"`
}

type articleJSON struct {
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	URL       string  `json:"url"`
	Image     string  `json:"image"`
	DateTime  string  `json:"dateTime"`
	Sentiment float64 `json:"sentiment"`
	Source    struct {
		Title string `json:"title"`
	} `json:"source"`
	Concepts []struct {
		Label struct {
			Eng string `json:"eng"`
		} `json:"label"`
	} `json:"concepts"`
	Location *struct {
		Lat   float64 `json:"lat"`
		Long  float64 `json:"long"`
		Label struct {
			Eng string `json:"eng"`
		} `json:"label"`
	} `json:"location"`
}
