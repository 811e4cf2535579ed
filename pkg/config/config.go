package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// Duration wraps time.Duration so YAML files can use strings like
// "30m" or "15s".
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or raw nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full SkiSpot service configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server" validate:"required"`
	Store     StoreConfig      `yaml:"store" validate:"required"`
	Scraper   ScraperConfig    `yaml:"scraper"`
	Geocoder  GeocoderConfig   `yaml:"geocoder"`
	Routing   RoutingConfig    `yaml:"routing"`
	Search    SearchConfig     `yaml:"search"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Host is the listen address.
	Host string `yaml:"host"`

	// Port is the listen port.
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds request read time.
	ReadTimeout Duration `yaml:"read_timeout"`

	// WriteTimeout bounds response write time.
	WriteTimeout Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Address returns the host:port listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	// Path is the database file path, or ":memory:".
	Path string `yaml:"path" validate:"required"`

	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
}

// ScraperConfig configures the snow report scraper.
type ScraperConfig struct {
	BaseURL   string   `yaml:"base_url" validate:"omitempty,url"`
	UserAgent string   `yaml:"user_agent"`
	Timeout   Duration `yaml:"timeout"`

	// Concurrency bounds parallel state page fetches.
	Concurrency int `yaml:"concurrency" validate:"min=0,max=32"`

	// CacheTTL is how long scraped conditions count as fresh.
	CacheTTL Duration `yaml:"cache_ttl"`

	// FreshThreshold is the minimum fresh resort count that skips a scrape.
	FreshThreshold int `yaml:"fresh_threshold"`
}

// GeocoderConfig configures the Nominatim client.
type GeocoderConfig struct {
	BaseURL   string   `yaml:"base_url" validate:"omitempty,url"`
	UserAgent string   `yaml:"user_agent" validate:"required"`
	Timeout   Duration `yaml:"timeout"`

	// CacheTTL is how long geocoding results are cached.
	CacheTTL Duration `yaml:"cache_ttl"`
}

// RoutingConfig configures the OSRM client.
type RoutingConfig struct {
	BaseURL string   `yaml:"base_url" validate:"omitempty,url"`
	Timeout Duration `yaml:"timeout"`

	// MaxRoutedCandidates caps routing calls per search; candidates
	// beyond the cap fall back to straight-line distance.
	MaxRoutedCandidates int `yaml:"max_routed_candidates" validate:"min=0,max=500"`
}

// SearchConfig configures the search pipeline.
type SearchConfig struct {
	// RoutingConcurrency bounds parallel OSRM calls per search.
	RoutingConcurrency int `yaml:"routing_concurrency" validate:"min=0,max=64"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Store: StoreConfig{
			Path:            "skispot.db",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration(time.Hour),
		},
		Scraper: ScraperConfig{
			Timeout:        Duration(15 * time.Second),
			Concurrency:    4,
			CacheTTL:       Duration(30 * time.Minute),
			FreshThreshold: 50,
		},
		Geocoder: GeocoderConfig{
			UserAgent: "skispot/1.0 (ski resort finder)",
			Timeout:   Duration(10 * time.Second),
			CacheTTL:  Duration(24 * time.Hour),
		},
		Routing: RoutingConfig{
			Timeout:             Duration(10 * time.Second),
			MaxRoutedCandidates: 30,
		},
		Search: SearchConfig{
			RoutingConcurrency: 8,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the handful of environment overrides used in
// container deployments, where mounting a config file is overkill.
func (c *Config) applyEnv() {
	if v := os.Getenv("SKISPOT_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SKISPOT_ADDR"); v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			if p, err := strconv.Atoi(port); err == nil {
				c.Server.Host = host
				c.Server.Port = p
			}
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	return nil
}
