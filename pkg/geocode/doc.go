// Package geocode resolves user-entered locations (US zip codes or
// "City, State" strings) to coordinates using the OpenStreetMap
// Nominatim API, with a store-backed result cache.
package geocode
