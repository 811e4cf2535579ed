// Package config loads and validates the SkiSpot service configuration
// from YAML, layering file values over built-in defaults.
package config
