// Package scraper collects US ski resort snow conditions from
// OnTheSnow state report pages and keeps the resort store fresh.
//
// The upstream site has gone through several layouts; the scraper
// handles the current table layout first and falls back to the older
// div-based rows and to individual resort pages when needed.
package scraper
