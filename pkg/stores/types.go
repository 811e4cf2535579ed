package stores

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ScrapeRunStatus represents the status of a scrape run.
type ScrapeRunStatus string

const (
	ScrapeRunStatusPending   ScrapeRunStatus = "pending"
	ScrapeRunStatusRunning   ScrapeRunStatus = "running"
	ScrapeRunStatusCompleted ScrapeRunStatus = "completed"
	ScrapeRunStatusFailed    ScrapeRunStatus = "failed"
)

// Resort is a cached ski resort record scraped from OnTheSnow.
// Condition fields are pointers because the source frequently omits them.
type Resort struct {
	ID     int64  `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	State  string `json:"state,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Snow depths and recent snowfall, in inches.
	BaseDepth   *int `json:"base_depth,omitempty"`
	SummitDepth *int `json:"summit_depth,omitempty"`
	NewSnow24h  *int `json:"new_snow_24h,omitempty"`
	NewSnow48h  *int `json:"new_snow_48h,omitempty"`

	TrailsOpen  *int `json:"trails_open,omitempty"`
	TrailsTotal *int `json:"trails_total,omitempty"`
	LiftsOpen   *int `json:"lifts_open,omitempty"`
	LiftsTotal  *int `json:"lifts_total,omitempty"`
	AcresOpen   *int `json:"acres_open,omitempty"`

	IsOpen            bool       `json:"is_open"`
	ConditionsUpdated *time.Time `json:"conditions_updated,omitempty"`

	URL string `json:"url,omitempty"`

	LastScraped time.Time `json:"last_scraped"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasCoordinates reports whether the resort has a known location.
func (r *Resort) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// TrailsPercentOpen returns the percentage of trails open, rounded.
func (r *Resort) TrailsPercentOpen() int {
	return percentOpen(r.TrailsOpen, r.TrailsTotal)
}

// LiftsPercentOpen returns the percentage of lifts open, rounded.
func (r *Resort) LiftsPercentOpen() int {
	return percentOpen(r.LiftsOpen, r.LiftsTotal)
}

func percentOpen(open, total *int) int {
	if total == nil || *total <= 0 {
		return 0
	}
	n := 0
	if open != nil {
		n = *open
	}
	return int(float64(n)/float64(*total)*100 + 0.5)
}

// ConditionsSummary returns a brief human-readable summary of current
// conditions, e.g. `48" base | 6" new | 195/195 trails`.
func (r *Resort) ConditionsSummary() string {
	var parts []string
	if r.BaseDepth != nil && *r.BaseDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d\" base", *r.BaseDepth))
	}
	if r.NewSnow24h != nil && *r.NewSnow24h > 0 {
		parts = append(parts, fmt.Sprintf("%d\" new", *r.NewSnow24h))
	}
	if r.TrailsOpen != nil && r.TrailsTotal != nil {
		parts = append(parts, fmt.Sprintf("%d/%d trails", *r.TrailsOpen, *r.TrailsTotal))
	}
	if len(parts) == 0 {
		return "No data"
	}
	return strings.Join(parts, " | ")
}

// ScrapeRun records one scraper pass over the upstream snow reports.
type ScrapeRun struct {
	ID              string          `json:"id"`
	Status          ScrapeRunStatus `json:"status"`
	StatesScraped   int             `json:"states_scraped"`
	ResortsUpserted int             `json:"resorts_upserted"`
	Error           *string         `json:"error,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// GeocodeEntry is a cached geocoding result keyed by the normalized query.
type GeocodeEntry struct {
	Query     string    `json:"query"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for the persistence layer.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Resort operations
	UpsertResort(ctx context.Context, resort *Resort) error
	GetResort(ctx context.Context, slug string) (*Resort, error)
	ListResorts(ctx context.Context) ([]*Resort, error)
	ListResortsWithCoordinates(ctx context.Context) ([]*Resort, error)
	CountFreshResorts(ctx context.Context, since time.Time) (int, error)
	DeleteResort(ctx context.Context, slug string) error

	// Scrape run operations
	CreateScrapeRun(ctx context.Context, run *ScrapeRun) error
	FinishScrapeRun(ctx context.Context, id string, status ScrapeRunStatus, states, resorts int, errMsg *string) error
	ListScrapeRuns(ctx context.Context, limit int) ([]*ScrapeRun, error)

	// Geocode cache operations
	GetGeocodeEntry(ctx context.Context, query string) (*GeocodeEntry, error)
	PutGeocodeEntry(ctx context.Context, entry *GeocodeEntry) error
	PurgeExpiredGeocodeEntries(ctx context.Context) (int64, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
