// Package geo provides great-circle distance math and the
// drive-distance / snow-quality ranking used by resort search.
package geo
