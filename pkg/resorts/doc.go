// Package resorts implements the resort search pipeline: geocode the
// user's location, refresh the resort cache, pre-filter by straight-line
// distance, compute driving routes, and rank the survivors across the
// snow-quality and drive-distance dimensions.
package resorts
