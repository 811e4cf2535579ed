package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// ErrNoResults is returned when Nominatim finds nothing for a query.
var ErrNoResults = errors.New("no geocoding results")

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ClientConfig configures the Nominatim client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client is a Nominatim geocoding client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *telemetry.Logger
	metrics   *telemetry.Metrics
}

// NewClient creates a Nominatim client. A User-Agent is required by the
// Nominatim usage policy.
func NewClient(cfg ClientConfig, logger *telemetry.Logger, metrics *telemetry.Metrics) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user agent is required by the Nominatim usage policy")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logger.NewComponentLogger("geocode"),
		metrics:   metrics,
	}, nil
}

// Geocode converts a location string (zip code or "City, State") to
// coordinates.
func (c *Client) Geocode(ctx context.Context, location string) (Point, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Point{}, fmt.Errorf("location is empty: %w", ErrNoResults)
	}

	if zipPattern.MatchString(location) {
		return c.geocodeZip(ctx, location)
	}
	return c.geocodeCityState(ctx, location)
}

// geocodeZip geocodes a US zip code. ZIP+4 codes are reduced to the
// 5-digit prefix.
func (c *Client) geocodeZip(ctx context.Context, zip string) (Point, error) {
	params := url.Values{}
	params.Set("postalcode", zip[:5])
	params.Set("countrycodes", "us")
	params.Set("format", "json")
	params.Set("limit", "1")

	return c.search(ctx, params)
}

// geocodeCityState geocodes a city/state combination, expanding a
// trailing state abbreviation for better results.
func (c *Client) geocodeCityState(ctx context.Context, location string) (Point, error) {
	location = ExpandStateAbbreviation(location)

	params := url.Values{}
	params.Set("q", location+", USA")
	params.Set("format", "json")
	params.Set("limit", "1")

	return c.search(ctx, params)
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) search(ctx context.Context, params url.Values) (Point, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordUpstreamCall("nominatim", "search", time.Since(start))
	}()

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("nominatim", "search")
		return Point{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordUpstreamError("nominatim", "search")
		return Point{}, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.metrics.RecordUpstreamError("nominatim", "search")
		return Point{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(results) == 0 {
		c.logger.Zerolog().Warn().Str("query", params.Encode()).Msg("no geocoding results")
		return Point{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid latitude in geocoding response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("invalid longitude in geocoding response: %w", err)
	}

	c.logger.Zerolog().Debug().
		Str("query", params.Encode()).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("geocoded location")

	return Point{Latitude: lat, Longitude: lon}, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode converts coordinates to a short place name for display.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordUpstreamCall("nominatim", "reverse", time.Since(start))
	}()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	// City-level zoom
	params.Set("zoom", "10")

	endpoint := c.baseURL + "/reverse?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("nominatim", "reverse")
		return "", fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordUpstreamError("nominatim", "reverse")
		return "", fmt.Errorf("reverse geocoding returned status %d", resp.StatusCode)
	}

	var result reverseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}

	if result.DisplayName == "" {
		return "", ErrNoResults
	}

	parts := strings.Split(result.DisplayName, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1]), nil
	}
	return strings.TrimSpace(parts[0]), nil
}
