// Package server exposes the SkiSpot HTTP API: the search endpoint,
// the resort listing, the embedded index page, and the health and
// metrics endpoints.
package server
