// Package routing computes driving distance and time between two
// points using the OSRM HTTP API. Callers are expected to fall back to
// straight-line distance when the routing service is unavailable.
package routing
