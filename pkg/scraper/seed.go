package scraper

import (
	"context"
	"fmt"

	"github.com/nolanlove/skiapp/pkg/stores"
)

type sampleResort struct {
	name        string
	slug        string
	state       string
	lat, lng    float64
	baseDepth   int
	newSnow     int
	trailsOpen  int
	trailsTotal int
	liftsOpen   int
	liftsTotal  int
	url         string
}

// sampleResorts carries realistic conditions for well-known resorts,
// used to bootstrap a fresh database before the first scrape.
var sampleResorts = []sampleResort{
	{"Vail", "vail", "Colorado", 39.6403, -106.3742, 48, 6, 195, 195, 31, 31, "https://www.onthesnow.com/colorado/vail/snow-report.html"},
	{"Breckenridge", "breckenridge", "Colorado", 39.4817, -106.0384, 42, 4, 187, 187, 35, 35, "https://www.onthesnow.com/colorado/breckenridge/snow-report.html"},
	{"Park City", "park-city", "Utah", 40.6514, -111.5080, 56, 8, 341, 341, 41, 41, "https://www.onthesnow.com/utah/park-city/snow-report.html"},
	{"Mammoth Mountain", "mammoth-mountain", "California", 37.6308, -119.0326, 84, 12, 150, 150, 28, 28, "https://www.onthesnow.com/california/mammoth-mountain/snow-report.html"},
	{"Jackson Hole", "jackson-hole", "Wyoming", 43.5875, -110.8279, 62, 5, 131, 131, 13, 13, "https://www.onthesnow.com/wyoming/jackson-hole/snow-report.html"},
	{"Big Sky", "big-sky", "Montana", 45.2618, -111.4015, 54, 3, 300, 300, 36, 36, "https://www.onthesnow.com/montana/big-sky/snow-report.html"},
	{"Aspen Snowmass", "aspen-snowmass", "Colorado", 39.2084, -106.9490, 38, 2, 337, 337, 43, 44, "https://www.onthesnow.com/colorado/aspen-snowmass/snow-report.html"},
	{"Steamboat", "steamboat", "Colorado", 40.4572, -106.8045, 52, 7, 169, 169, 18, 18, "https://www.onthesnow.com/colorado/steamboat/snow-report.html"},
	{"Telluride", "telluride", "Colorado", 37.9375, -107.8123, 44, 4, 148, 148, 18, 18, "https://www.onthesnow.com/colorado/telluride/snow-report.html"},
	{"Taos", "taos", "New Mexico", 36.5969, -105.4544, 36, 0, 110, 110, 14, 15, "https://www.onthesnow.com/new-mexico/taos/snow-report.html"},
	{"Killington", "killington", "Vermont", 43.6045, -72.8201, 32, 2, 155, 155, 22, 22, "https://www.onthesnow.com/vermont/killington/snow-report.html"},
	{"Stowe", "stowe", "Vermont", 44.5303, -72.7814, 28, 3, 116, 116, 12, 13, "https://www.onthesnow.com/vermont/stowe/snow-report.html"},
	{"Jay Peak", "jay-peak", "Vermont", 44.9275, -72.5050, 36, 5, 78, 81, 9, 9, "https://www.onthesnow.com/vermont/jay-peak/snow-report.html"},
	{"Sugarbush", "sugarbush", "Vermont", 44.1357, -72.9012, 24, 2, 111, 111, 16, 16, "https://www.onthesnow.com/vermont/sugarbush/snow-report.html"},
	{"Okemo", "okemo", "Vermont", 43.4017, -72.7170, 30, 3, 121, 121, 19, 20, "https://www.onthesnow.com/vermont/okemo/snow-report.html"},
	{"Stratton", "stratton", "Vermont", 43.1136, -72.9081, 26, 4, 99, 99, 11, 11, "https://www.onthesnow.com/vermont/stratton/snow-report.html"},
	{"Mount Snow", "mount-snow", "Vermont", 42.9601, -72.9204, 22, 2, 86, 86, 20, 20, "https://www.onthesnow.com/vermont/mount-snow/snow-report.html"},
	{"Loon Mountain", "loon-mountain", "New Hampshire", 44.0364, -71.6214, 28, 3, 61, 61, 10, 11, "https://www.onthesnow.com/new-hampshire/loon-mountain/snow-report.html"},
	{"Cannon Mountain", "cannon-mountain", "New Hampshire", 44.1567, -71.6986, 32, 4, 97, 97, 10, 11, "https://www.onthesnow.com/new-hampshire/cannon-mountain/snow-report.html"},
	{"Bretton Woods", "bretton-woods", "New Hampshire", 44.2586, -71.4392, 26, 2, 62, 63, 10, 10, "https://www.onthesnow.com/new-hampshire/bretton-woods/snow-report.html"},
	{"Waterville Valley", "waterville-valley", "New Hampshire", 43.9506, -71.5281, 24, 3, 52, 52, 8, 11, "https://www.onthesnow.com/new-hampshire/waterville-valley/snow-report.html"},
	{"Wildcat Mountain", "wildcat-mountain", "New Hampshire", 44.2633, -71.2392, 30, 5, 48, 48, 5, 5, "https://www.onthesnow.com/new-hampshire/wildcat-mountain/snow-report.html"},
	{"Attitash", "attitash", "New Hampshire", 44.0828, -71.2297, 22, 2, 68, 68, 9, 11, "https://www.onthesnow.com/new-hampshire/attitash/snow-report.html"},
	{"Cranmore", "cranmore", "New Hampshire", 44.0542, -71.1086, 20, 1, 57, 57, 9, 9, "https://www.onthesnow.com/new-hampshire/cranmore/snow-report.html"},
	{"Sunday River", "sunday-river", "Maine", 44.4736, -70.8567, 34, 4, 135, 135, 18, 18, "https://www.onthesnow.com/maine/sunday-river/snow-report.html"},
	{"Sugarloaf", "sugarloaf", "Maine", 45.0314, -70.3131, 40, 6, 162, 162, 13, 14, "https://www.onthesnow.com/maine/sugarloaf/snow-report.html"},
	{"Whiteface", "whiteface", "New York", 44.3656, -73.9026, 28, 3, 89, 89, 11, 11, "https://www.onthesnow.com/new-york/whiteface/snow-report.html"},
	{"Gore Mountain", "gore-mountain", "New York", 43.6717, -74.0067, 24, 2, 110, 110, 14, 14, "https://www.onthesnow.com/new-york/gore-mountain/snow-report.html"},
	{"Heavenly", "heavenly", "California", 38.9353, -119.9400, 72, 10, 97, 97, 28, 28, "https://www.onthesnow.com/california/heavenly/snow-report.html"},
	{"Palisades Tahoe", "palisades-tahoe", "California", 39.1969, -120.2358, 96, 14, 270, 270, 42, 42, "https://www.onthesnow.com/california/palisades-tahoe/snow-report.html"},
	{"Snowbird", "snowbird", "Utah", 40.5830, -111.6538, 78, 9, 169, 169, 13, 14, "https://www.onthesnow.com/utah/snowbird/snow-report.html"},
	{"Alta", "alta", "Utah", 40.5884, -111.6386, 82, 11, 116, 116, 10, 10, "https://www.onthesnow.com/utah/alta/snow-report.html"},
	{"Deer Valley", "deer-valley", "Utah", 40.6375, -111.4783, 48, 6, 103, 103, 21, 21, "https://www.onthesnow.com/utah/deer-valley/snow-report.html"},
	{"Sun Valley", "sun-valley", "Idaho", 43.6806, -114.4083, 40, 2, 121, 121, 17, 18, "https://www.onthesnow.com/idaho/sun-valley/snow-report.html"},
	{"Mt. Bachelor", "mt-bachelor", "Oregon", 43.9792, -121.6886, 68, 8, 101, 101, 11, 15, "https://www.onthesnow.com/oregon/mt-bachelor/snow-report.html"},
	{"Crystal Mountain (WA)", "crystal-mountain-washington", "Washington", 46.9282, -121.5045, 88, 15, 57, 57, 10, 11, "https://www.onthesnow.com/washington/crystal-mountain/snow-report.html"},
}

// SeedSamples loads the sample resort set into the store. Useful for
// development and as a fallback when scraping is unavailable.
func (s *Scraper) SeedSamples(ctx context.Context) (int, error) {
	for _, sample := range sampleResorts {
		lat, lng := sample.lat, sample.lng
		base, snow := sample.baseDepth, sample.newSnow
		trailsOpen, trailsTotal := sample.trailsOpen, sample.trailsTotal
		liftsOpen, liftsTotal := sample.liftsOpen, sample.liftsTotal

		resort := &stores.Resort{
			Slug:        sample.slug,
			Name:        sample.name,
			State:       sample.state,
			Latitude:    &lat,
			Longitude:   &lng,
			BaseDepth:   &base,
			NewSnow24h:  &snow,
			TrailsOpen:  &trailsOpen,
			TrailsTotal: &trailsTotal,
			LiftsOpen:   &liftsOpen,
			LiftsTotal:  &liftsTotal,
			IsOpen:      true,
			URL:         sample.url,
		}
		if err := s.store.UpsertResort(ctx, resort); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", sample.slug, err)
		}
	}

	s.logger.Zerolog().Info().Int("resorts", len(sampleResorts)).Msg("seeded sample resorts")
	return len(sampleResorts), nil
}
