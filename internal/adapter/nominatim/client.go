// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim search API. The public instance allows one request per second;
// callers front the client with a rate-limit bucket.
package nominatim

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

	"github.com/geowatch/event-radar/internal/domain"
	"github.com/geowatch/event-radar/internal/ratelimit"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client is a Nominatim search client. The user agent is required by the
// public instance's usage policy; requests without one are rejected.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. baseURL overrides the public
// instance for tests and self-hosted deployments; empty means public.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Search resolves a free-text place name to coordinates. An empty result
// set is a miss, not an error.
func (c *Client) Search(ctx context.Context, text string) (domain.GeocodeResult, bool, error) {
	params := url.Values{
		"q":      {text},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	fullURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodeResult{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, false, fmt.Errorf("nominatim search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.GeocodeResult{}, false, &ratelimit.HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var places []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodeResult{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.GeocodeResult{}, false, nil
	}

	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lng, lngErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lngErr != nil {
		return domain.GeocodeResult{}, false, fmt.Errorf("parse coordinates %q,%q", p.Lat, p.Lon)
	}

	return domain.GeocodeResult{
		Lat:         lat,
		Lng:         lng,
		DisplayName: p.DisplayName,
		Confidence:  p.Importance,
	}, true, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type searchResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}
