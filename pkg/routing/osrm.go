package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nolanlove/skiapp/pkg/geocode"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// DefaultBaseURL is the public OSRM demo instance.
const DefaultBaseURL = "https://router.project-osrm.org"

const metersPerMile = 1609.344

// ErrNoRoute is returned when OSRM cannot find a driving route between
// the two points.
var ErrNoRoute = errors.New("no driving route found")

// Route is a computed driving route.
type Route struct {
	// Miles is the driving distance, rounded to one decimal place.
	Miles float64 `json:"miles"`
	// Hours is the driving time, rounded to two decimal places.
	Hours float64 `json:"hours"`
}

// ClientConfig configures the OSRM client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client is an OSRM routing client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewClient creates an OSRM client.
func NewClient(cfg ClientConfig, logger *telemetry.Logger, metrics *telemetry.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger.NewComponentLogger("routing"),
		metrics: metrics,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// DrivingRoute returns the driving distance and time from one point to
// another. OSRM expects coordinates in longitude,latitude order.
func (c *Client) DrivingRoute(ctx context.Context, from, to geocode.Point) (Route, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordUpstreamCall("osrm", "route", time.Since(start))
	}()

	endpoint := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false",
		c.baseURL,
		formatCoord(from.Longitude), formatCoord(from.Latitude),
		formatCoord(to.Longitude), formatCoord(to.Latitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Route{}, fmt.Errorf("failed to build routing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("osrm", "route")
		return Route{}, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordUpstreamError("osrm", "route")
		return Route{}, fmt.Errorf("routing request returned status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.RecordUpstreamError("osrm", "route")
		return Route{}, fmt.Errorf("failed to decode routing response: %w", err)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		c.logger.Zerolog().Debug().Str("code", body.Code).Msg("no route found")
		return Route{}, ErrNoRoute
	}

	route := Route{
		Miles: math.Round(body.Routes[0].Distance/metersPerMile*10) / 10,
		Hours: math.Round(body.Routes[0].Duration/3600*100) / 100,
	}

	c.logger.Zerolog().Debug().
		Float64("miles", route.Miles).
		Float64("hours", route.Hours).
		Msg("computed driving route")

	return route, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
