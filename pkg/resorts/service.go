package resorts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nolanlove/skiapp/pkg/geo"
	"github.com/nolanlove/skiapp/pkg/geocode"
	"github.com/nolanlove/skiapp/pkg/routing"
	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// DefaultRadiusMiles is the search radius used when none is given.
const DefaultRadiusMiles = 100

// maxResults caps how many resorts a search returns.
const maxResults = 10

// prefilterFactor widens the straight-line pre-filter, since driving
// distance is usually longer than straight-line.
const prefilterFactor = 1.5

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid search request")

// ErrLocationNotFound is returned when the location cannot be geocoded.
var ErrLocationNotFound = errors.New("could not find location")

// ConditionsSource supplies the current resort set, refreshing stale data.
type ConditionsSource interface {
	Refresh(ctx context.Context) ([]*stores.Resort, error)
}

// Router computes driving routes between two points.
type Router interface {
	DrivingRoute(ctx context.Context, from, to geocode.Point) (routing.Route, error)
}

// Config configures the search service.
type Config struct {
	// RoutingConcurrency bounds parallel OSRM calls per search.
	RoutingConcurrency int

	// MaxRoutedCandidates caps how many prefiltered resorts get a
	// driving route per search; the rest keep straight-line distance.
	MaxRoutedCandidates int
}

// Service runs resort searches.
type Service struct {
	cfg      Config
	geocoder geocode.Geocoder
	source   ConditionsSource
	router   Router
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
}

// NewService wires the search pipeline together.
func NewService(cfg Config, geocoder geocode.Geocoder, source ConditionsSource, router Router, logger *telemetry.Logger, metrics *telemetry.Metrics, tracer *telemetry.Tracer) *Service {
	if cfg.RoutingConcurrency <= 0 {
		cfg.RoutingConcurrency = 8
	}
	if cfg.MaxRoutedCandidates <= 0 {
		cfg.MaxRoutedCandidates = 30
	}
	return &Service{
		cfg:      cfg,
		geocoder: geocoder,
		source:   source,
		router:   router,
		logger:   logger.NewComponentLogger("search"),
		metrics:  metrics,
		tracer:   tracer,
	}
}

// SearchRequest describes one resort search.
type SearchRequest struct {
	// Location is a US zip code or "City, State" string.
	Location string

	// RadiusMiles is the maximum driving distance. Zero means the default.
	RadiusMiles int

	// Priority picks which dimension dominates the combined score.
	Priority geo.Priority

	// SortBy overrides the default combined ordering.
	SortBy geo.SortBy
}

func (r *SearchRequest) normalize() error {
	if r.Location == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidRequest)
	}
	if r.RadiusMiles < 0 {
		return fmt.Errorf("%w: radius must be positive", ErrInvalidRequest)
	}
	if r.RadiusMiles == 0 {
		r.RadiusMiles = DefaultRadiusMiles
	}
	if r.Priority == "" {
		r.Priority = geo.PrioritySnow
	}
	if r.SortBy == "" {
		r.SortBy = geo.SortByCombined
	}
	return nil
}

// UserLocation echoes the resolved search origin.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Query     string  `json:"query"`
}

// Result is one resort in a search response.
type Result struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	State             string   `json:"state"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	IsOpen            bool     `json:"is_open"`
	BaseDepth         *int     `json:"base_depth"`
	NewSnow24h        *int     `json:"new_snow_24h"`
	TrailsOpen        *int     `json:"trails_open"`
	TrailsTotal       *int     `json:"trails_total"`
	LiftsOpen         *int     `json:"lifts_open"`
	LiftsTotal        *int     `json:"lifts_total"`
	TrailsPercentOpen int      `json:"trails_percent_open"`
	LiftsPercentOpen  int      `json:"lifts_percent_open"`
	ConditionsSummary string   `json:"conditions_summary"`
	URL               string   `json:"url"`

	// DriveMiles is the driving distance; straight-line when routing
	// failed, in which case DriveHours and DriveTime are absent.
	DriveMiles float64  `json:"drive_miles"`
	DriveHours *float64 `json:"drive_hours"`
	DriveTime  string   `json:"drive_time,omitempty"`

	// Scores are scaled to 0-100 for display.
	SnowQualityScore int `json:"snow_quality_score"`
	DistanceScore    int `json:"distance_score"`
	OverallScore     int `json:"overall_score"`
}

// SearchResponse is the full result of a search.
type SearchResponse struct {
	UserLocation UserLocation     `json:"user_location"`
	Radius       int              `json:"radius"`
	Count        int              `json:"count"`
	Resorts      []Result         `json:"resorts"`
	Timings      map[string]int64 `json:"timings"`
}

// Search runs the full pipeline for one request.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.StartSearchSpan(ctx, req.Location, req.RadiusMiles, string(req.Priority))
	defer span.End()

	totalStart := time.Now()
	timings := make(map[string]int64)

	// Stage 1: geocode the user's location.
	origin, err := runStage(ctx, s, "geocode", timings, "geocoding_ms", func(ctx context.Context) (geocode.Point, error) {
		return s.geocoder.Geocode(ctx, req.Location)
	})
	if err != nil {
		s.metrics.RecordSearch(string(req.Priority), "geocode_failed", time.Since(totalStart), 0)
		telemetry.RecordError(span, err)
		if errors.Is(err, geocode.ErrNoResults) {
			return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, req.Location)
		}
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	// Stage 2: load resorts, refreshing the cache if stale.
	all, err := runStage(ctx, s, "load_resorts", timings, "get_resorts_ms", func(ctx context.Context) ([]*stores.Resort, error) {
		return s.source.Refresh(ctx)
	})
	if err != nil {
		s.metrics.RecordSearch(string(req.Priority), "load_failed", time.Since(totalStart), 0)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load resorts: %w", err)
	}
	timings["total_resorts"] = int64(len(all))

	// Stage 3: distance filter and ranking.
	ranked, err := runStage(ctx, s, "filter_rank", timings, "filter_distance_ms", func(ctx context.Context) ([]geo.Ranked, error) {
		return s.filterAndRank(ctx, origin, all, req)
	})
	if err != nil {
		s.metrics.RecordSearch(string(req.Priority), "filter_failed", time.Since(totalStart), 0)
		telemetry.RecordError(span, err)
		return nil, err
	}
	timings["candidates_after_filter"] = int64(len(ranked))

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, toResult(r))
	}

	timings["total_ms"] = time.Since(totalStart).Milliseconds()
	s.logger.Zerolog().Info().
		Str("location", req.Location).
		Int("radius", req.RadiusMiles).
		Str("priority", string(req.Priority)).
		Int("results", len(results)).
		Interface("timings", timings).
		Msg("search completed")

	s.metrics.RecordSearch(string(req.Priority), "ok", time.Since(totalStart), len(results))

	return &SearchResponse{
		UserLocation: UserLocation{
			Latitude:  origin.Latitude,
			Longitude: origin.Longitude,
			Query:     req.Location,
		},
		Radius:  req.RadiusMiles,
		Count:   len(results),
		Resorts: results,
		Timings: timings,
	}, nil
}

// filterAndRank pre-filters by straight-line distance, resolves driving
// routes concurrently, and ranks the survivors.
func (s *Service) filterAndRank(ctx context.Context, origin geocode.Point, all []*stores.Resort, req SearchRequest) ([]geo.Ranked, error) {
	maxMiles := float64(req.RadiusMiles)

	// Straight-line pre-filter avoids routing calls for resorts that
	// are clearly out of range.
	type nearResort struct {
		resort   *stores.Resort
		straight float64
	}
	var prefiltered []nearResort
	for _, r := range all {
		if !r.HasCoordinates() {
			continue
		}
		d := geo.Haversine(origin.Latitude, origin.Longitude, *r.Latitude, *r.Longitude)
		if d <= maxMiles*prefilterFactor {
			prefiltered = append(prefiltered, nearResort{resort: r, straight: d})
		}
	}
	if len(prefiltered) == 0 {
		return []geo.Ranked{}, nil
	}

	var (
		mu         sync.Mutex
		candidates []geo.Candidate
	)

	// Only the nearest candidates get a routing call; a dense radius
	// must not fan out into hundreds of OSRM requests. The overflow
	// keeps its straight-line distance.
	routed := prefiltered
	if len(routed) > s.cfg.MaxRoutedCandidates {
		sort.Slice(prefiltered, func(i, j int) bool {
			return prefiltered[i].straight < prefiltered[j].straight
		})
		routed = prefiltered[:s.cfg.MaxRoutedCandidates]
		for _, n := range prefiltered[s.cfg.MaxRoutedCandidates:] {
			if n.straight <= maxMiles {
				candidates = append(candidates, geo.Candidate{Resort: n.resort, DriveMiles: round1(n.straight)})
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.RoutingConcurrency)
	for _, n := range routed {
		g.Go(func() error {
			r := n.resort
			dest := geocode.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
			route, err := s.router.DrivingRoute(gctx, origin, dest)
			if err != nil {
				// Straight-line fallback keeps the resort in play.
				if n.straight > maxMiles {
					return nil
				}
				s.logger.WithError(err).WithResort(r.Slug).Debug("routing failed, using straight-line distance")
				mu.Lock()
				candidates = append(candidates, geo.Candidate{Resort: r, DriveMiles: round1(n.straight)})
				mu.Unlock()
				return nil
			}
			if route.Miles > maxMiles {
				return nil
			}
			hours := route.Hours
			mu.Lock()
			candidates = append(candidates, geo.Candidate{Resort: r, DriveMiles: route.Miles, DriveHours: &hours})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("route resolution failed: %w", err)
	}

	// Concurrent appends scramble order; restore a stable input order
	// so ties rank deterministically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Resort.Slug < candidates[j].Resort.Slug
	})

	return geo.Rank(candidates, req.Priority, req.SortBy), nil
}

// AllResorts returns every resort with known coordinates, refreshing
// the cache first if needed.
func (s *Service) AllResorts(ctx context.Context) ([]*stores.Resort, error) {
	all, err := s.source.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load resorts: %w", err)
	}

	resorts := make([]*stores.Resort, 0, len(all))
	for _, r := range all {
		if r.HasCoordinates() {
			resorts = append(resorts, r)
		}
	}
	return resorts, nil
}

// runStage times one pipeline stage, recording a span and a metric.
func runStage[T any](ctx context.Context, s *Service, name string, timings map[string]int64, key string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.StartStageSpan(ctx, name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	elapsed := time.Since(start)

	timings[key] = elapsed.Milliseconds()
	s.metrics.RecordSearchStage(name, elapsed)
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return out, err
}

func toResult(r geo.Ranked) Result {
	res := Result{
		ID:                r.Resort.ID,
		Name:              r.Resort.Name,
		State:             r.Resort.State,
		Latitude:          r.Resort.Latitude,
		Longitude:         r.Resort.Longitude,
		IsOpen:            r.Resort.IsOpen,
		BaseDepth:         r.Resort.BaseDepth,
		NewSnow24h:        r.Resort.NewSnow24h,
		TrailsOpen:        r.Resort.TrailsOpen,
		TrailsTotal:       r.Resort.TrailsTotal,
		LiftsOpen:         r.Resort.LiftsOpen,
		LiftsTotal:        r.Resort.LiftsTotal,
		TrailsPercentOpen: r.Resort.TrailsPercentOpen(),
		LiftsPercentOpen:  r.Resort.LiftsPercentOpen(),
		ConditionsSummary: r.Resort.ConditionsSummary(),
		URL:               r.Resort.URL,
		DriveMiles:        round1(r.DriveMiles),
		DriveHours:        r.DriveHours,
		SnowQualityScore:  int(math.Round(r.QualityScore * 100)),
		DistanceScore:     int(math.Round(r.DistanceScore * 100)),
		OverallScore:      int(math.Round(r.CombinedScore * 100)),
	}
	if r.DriveHours != nil {
		res.DriveTime = routing.FormatDriveTime(*r.DriveHours)
	}
	return res
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
