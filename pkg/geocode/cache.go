package geocode

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// Geocoder resolves a location string to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Point, error)
}

// CachedGeocoder wraps a Geocoder with a store-backed result cache.
// Successful lookups are cached with a TTL; failures are never cached.
type CachedGeocoder struct {
	inner   Geocoder
	store   stores.Store
	ttl     time.Duration
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// NewCachedGeocoder creates a caching wrapper around the given geocoder.
func NewCachedGeocoder(inner Geocoder, store stores.Store, ttl time.Duration, logger *telemetry.Logger, metrics *telemetry.Metrics) *CachedGeocoder {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &CachedGeocoder{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		logger:  logger.NewComponentLogger("geocode-cache"),
		metrics: metrics,
	}
}

// Geocode resolves a location, consulting the cache first. Cache
// failures degrade to a direct lookup rather than failing the request.
func (c *CachedGeocoder) Geocode(ctx context.Context, location string) (Point, error) {
	key := normalizeQuery(location)

	entry, err := c.store.GetGeocodeEntry(ctx, key)
	if err == nil {
		c.metrics.RecordGeocodeCache("hit")
		return Point{Latitude: entry.Latitude, Longitude: entry.Longitude}, nil
	}
	if !errors.Is(err, stores.ErrNotFound) {
		c.logger.WithError(err).Warn("geocode cache lookup failed")
	}
	c.metrics.RecordGeocodeCache("miss")

	point, err := c.inner.Geocode(ctx, location)
	if err != nil {
		return Point{}, err
	}

	putErr := c.store.PutGeocodeEntry(ctx, &stores.GeocodeEntry{
		Query:     key,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		ExpiresAt: time.Now().UTC().Add(c.ttl),
	})
	if putErr != nil {
		c.logger.WithError(putErr).Warn("failed to cache geocode result")
	}

	return point, nil
}

// normalizeQuery canonicalizes a location string for use as a cache key.
func normalizeQuery(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}
