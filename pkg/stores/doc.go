// Package stores provides the persistence layer for SkiSpot.
// It includes SQLite-based storage with WAL mode, connection pooling,
// and CRUD operations for cached resorts, scrape runs, and the
// geocode cache table.
package stores
