package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// DefaultBaseURL is the OnTheSnow site root.
const DefaultBaseURL = "https://www.onthesnow.com"

// defaultUserAgent mimics a desktop browser; the site blocks obvious bots.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// statePage is one state's snow report listing.
type statePage struct {
	Name string
	Path string
}

// statePages lists the US states with ski resorts worth scraping.
var statePages = []statePage{
	{"Colorado", "/colorado/skireport.html"},
	{"California", "/california/skireport.html"},
	{"Utah", "/utah/skireport.html"},
	{"Vermont", "/vermont/skireport.html"},
	{"Montana", "/montana/skireport.html"},
	{"Wyoming", "/wyoming/skireport.html"},
	{"New Mexico", "/new-mexico/skireport.html"},
	{"Idaho", "/idaho/skireport.html"},
	{"Oregon", "/oregon/skireport.html"},
	{"Washington", "/washington/skireport.html"},
	{"New Hampshire", "/new-hampshire/skireport.html"},
	{"Maine", "/maine/skireport.html"},
	{"New York", "/new-york/skireport.html"},
	{"Michigan", "/michigan/skireport.html"},
	{"Wisconsin", "/wisconsin/skireport.html"},
	{"Minnesota", "/minnesota/skireport.html"},
	{"Pennsylvania", "/pennsylvania/skireport.html"},
	{"West Virginia", "/west-virginia/skireport.html"},
	{"Virginia", "/virginia/skireport.html"},
	{"North Carolina", "/north-carolina/skireport.html"},
	{"Massachusetts", "/massachusetts/skireport.html"},
	{"Connecticut", "/connecticut/skireport.html"},
	{"Nevada", "/nevada/skireport.html"},
	{"Arizona", "/arizona/skireport.html"},
	{"Alaska", "/alaska/skireport.html"},
	{"South Dakota", "/south-dakota/skireport.html"},
}

// StateNames returns the names of all states the scraper covers.
func StateNames() []string {
	names := make([]string, len(statePages))
	for i, s := range statePages {
		names[i] = s.Name
	}
	return names
}

// Config configures the scraper.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Concurrency bounds the number of state pages fetched in parallel.
	Concurrency int

	// CacheTTL is how long scraped conditions stay fresh.
	CacheTTL time.Duration

	// FreshThreshold is the minimum number of fresh resorts needed to
	// skip a refresh.
	FreshThreshold int
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Minute
	}
	if c.FreshThreshold == 0 {
		c.FreshThreshold = 50
	}
}

// Scraper fetches snow reports and writes resort records to the store.
type Scraper struct {
	cfg     Config
	store   stores.Store
	http    *http.Client
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// New creates a scraper backed by the given store.
func New(cfg Config, store stores.Store, logger *telemetry.Logger, metrics *telemetry.Metrics, tracer *telemetry.Tracer) *Scraper {
	cfg.applyDefaults()
	return &Scraper{
		cfg:     cfg,
		store:   store,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger.NewComponentLogger("scraper"),
		metrics: metrics,
		tracer:  tracer,
	}
}

// Refresh returns all resorts from the store, scraping first if the
// cache has gone stale. Scrape failures degrade to whatever is cached.
func (s *Scraper) Refresh(ctx context.Context) ([]*stores.Resort, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.CacheTTL)
	fresh, err := s.store.CountFreshResorts(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to count fresh resorts: %w", err)
	}

	if fresh <= s.cfg.FreshThreshold {
		s.logger.Zerolog().Info().
			Int("fresh", fresh).
			Int("threshold", s.cfg.FreshThreshold).
			Msg("resort cache stale, refreshing")

		if _, err := s.ScrapeAll(ctx, nil); err != nil {
			s.logger.WithError(err).Error("scrape failed, serving cached data")
		}
	}

	resorts, err := s.store.ListResorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resorts: %w", err)
	}
	s.metrics.SetResortsCached(float64(len(resorts)))
	return resorts, nil
}

// ScrapeAll scrapes the given states (all states if nil) concurrently
// and records the pass as a scrape run. It returns the run record.
func (s *Scraper) ScrapeAll(ctx context.Context, states []string) (*stores.ScrapeRun, error) {
	pages := statePages
	if len(states) > 0 {
		pages = filterStates(states)
		if len(pages) == 0 {
			return nil, fmt.Errorf("no known states match %v", states)
		}
	}

	run := &stores.ScrapeRun{
		ID:        uuid.NewString(),
		Status:    stores.ScrapeRunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	ctx, span := s.tracer.StartScrapeSpan(ctx, run.ID)
	defer span.End()

	if err := s.store.CreateScrapeRun(ctx, run); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to record scrape run: %w", err)
	}

	start := time.Now()
	var scraped, upserted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, page := range pages {
		g.Go(func() error {
			n, err := s.scrapeState(gctx, page)
			if err != nil {
				// One bad state page must not abort the whole run.
				s.logger.WithError(err).WithField("state", page.Name).Error("state scrape failed")
				return nil
			}
			scraped.Add(1)
			upserted.Add(int64(n))
			return nil
		})
	}

	status := stores.ScrapeRunStatusCompleted
	var errMsg *string
	if err := g.Wait(); err != nil {
		status = stores.ScrapeRunStatusFailed
		msg := err.Error()
		errMsg = &msg
	} else if scraped.Load() == 0 {
		status = stores.ScrapeRunStatusFailed
		msg := "all state scrapes failed"
		errMsg = &msg
	}

	run.Status = status
	run.StatesScraped = int(scraped.Load())
	run.ResortsUpserted = int(upserted.Load())
	run.Error = errMsg

	if err := s.store.FinishScrapeRun(ctx, run.ID, status, run.StatesScraped, run.ResortsUpserted, errMsg); err != nil {
		telemetry.RecordError(span, err)
		return run, fmt.Errorf("failed to finish scrape run: %w", err)
	}

	s.metrics.RecordScrapeRun(string(status), time.Since(start))
	s.logger.Zerolog().Info().
		Str("run_id", run.ID).
		Str("status", string(status)).
		Int("states", run.StatesScraped).
		Int("resorts", run.ResortsUpserted).
		Dur("elapsed", time.Since(start)).
		Msg("scrape run finished")

	if status == stores.ScrapeRunStatusFailed {
		err := fmt.Errorf("scrape run %s failed", run.ID)
		telemetry.RecordError(span, err)
		return run, err
	}
	return run, nil
}

// scrapeState fetches one state report page and upserts its resorts.
func (s *Scraper) scrapeState(ctx context.Context, page statePage) (int, error) {
	doc, err := s.fetch(ctx, s.cfg.BaseURL+page.Path)
	if err != nil {
		return 0, err
	}

	count, err := s.parseStatePage(ctx, doc, page.Name)
	if err != nil {
		return 0, err
	}

	s.metrics.RecordResortsUpserted(page.Name, count)
	s.logger.Zerolog().Debug().
		Str("state", page.Name).
		Int("resorts", count).
		Msg("scraped state")
	return count, nil
}

// parseStatePage extracts resorts from a state report document, trying
// the table layout, then the older div rows, then individual pages.
func (s *Scraper) parseStatePage(ctx context.Context, doc *goquery.Document, state string) (int, error) {
	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		rows = doc.Find("table tr")
	}

	count := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		resort := parseTableRow(row, state)
		if resort == nil {
			return
		}
		resort.URL = s.absoluteURL(resort.URL)
		if err := s.store.UpsertResort(ctx, resort); err != nil {
			s.logger.WithError(err).WithResort(resort.Slug).Error("failed to upsert resort")
			return
		}
		count++
	})
	if count > 0 {
		return count, nil
	}

	divRows := doc.Find(`div[data-testid="resort-row"]`)
	divRows.Each(func(_ int, row *goquery.Selection) {
		resort := parseDivRow(row, state)
		if resort == nil {
			return
		}
		resort.URL = s.absoluteURL(resort.URL)
		if err := s.store.UpsertResort(ctx, resort); err != nil {
			s.logger.WithError(err).WithResort(resort.Slug).Error("failed to upsert resort")
			return
		}
		count++
	})
	if count > 0 {
		return count, nil
	}

	// Last resort: follow links to individual resort pages.
	var links []string
	doc.Find(`a[href*="/snow-report.html"]`).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.Contains(href, "/snow-report.html") {
			links = append(links, href)
		}
	})
	for _, link := range links {
		resort, err := s.scrapeResortPage(ctx, link, state)
		if err != nil {
			s.logger.WithError(err).WithField("url", link).Error("failed to scrape resort page")
			continue
		}
		if resort == nil {
			continue
		}
		if err := s.store.UpsertResort(ctx, resort); err != nil {
			s.logger.WithError(err).WithResort(resort.Slug).Error("failed to upsert resort")
			continue
		}
		count++
	}

	return count, nil
}

// parseTableRow parses one row of the table layout. Columns: name with
// report age, 24h snowfall, 3-day forecast, base depth with surface
// condition, trails open, lifts open.
func parseTableRow(row *goquery.Selection, state string) *stores.Resort {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return nil
	}

	link := cells.Eq(0).Find("a").First()
	if link.Length() == 0 {
		return nil
	}

	name := cleanResortName(strings.TrimSpace(link.Text()))
	if name == "" {
		return nil
	}
	href, _ := link.Attr("href")

	resort := &stores.Resort{
		Slug:  slugify(name),
		Name:  name,
		State: state,
		URL:   href,
	}

	if c, ok := lookupCoords(resort.Slug); ok {
		resort.Latitude = &c.Lat
		resort.Longitude = &c.Lng
	}

	resort.NewSnow24h = parseSnowfall(strings.TrimSpace(cells.Eq(1).Text()))
	resort.BaseDepth = parseBaseDepth(strings.TrimSpace(cells.Eq(3).Text()))
	resort.TrailsOpen, resort.TrailsTotal = parseOpenCounts(cells.Eq(4).Text())
	if cells.Length() > 5 {
		resort.LiftsOpen, resort.LiftsTotal = parseOpenCounts(cells.Eq(5).Text())
	}

	resort.IsOpen = isOpen(resort.TrailsOpen, resort.LiftsOpen)
	return resort
}

var (
	trailsRatioPattern = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*trails?`)
	liftsRatioPattern  = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*lifts?`)
	basePattern        = regexp.MustCompile(`(?i)base[:\s]+(\d+)`)
	newSnowPattern     = regexp.MustCompile(`(?i)new\s+(?:snow\s+)?(\d+)"?`)
)

// parseDivRow parses the older div-based row layout.
func parseDivRow(row *goquery.Selection, state string) *stores.Resort {
	link := row.Find(`a[href*="snow-report"]`).First()
	if link.Length() == 0 {
		link = row.Find("a").First()
	}
	if link.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(link.Text())
	if name == "" {
		return nil
	}
	href, _ := link.Attr("href")

	resort := &stores.Resort{
		Slug:  slugify(name),
		Name:  name,
		State: state,
		URL:   href,
	}

	if c, ok := lookupCoords(resort.Slug); ok {
		resort.Latitude = &c.Lat
		resort.Longitude = &c.Lng
	}

	text := row.Text()
	if m := basePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resort.BaseDepth = &n
		}
	}
	if m := newSnowPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resort.NewSnow24h = &n
		}
	}
	if m := trailsRatioPattern.FindStringSubmatch(text); m != nil {
		open, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		resort.TrailsOpen, resort.TrailsTotal = &open, &total
	}
	if m := liftsRatioPattern.FindStringSubmatch(text); m != nil {
		open, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		resort.LiftsOpen, resort.LiftsTotal = &open, &total
	}

	resort.IsOpen = isOpen(resort.TrailsOpen, resort.LiftsOpen)
	return resort
}

var (
	scriptLatPattern   = regexp.MustCompile(`"latitude":\s*(-?[\d.]+)`)
	scriptLngPattern   = regexp.MustCompile(`"longitude":\s*(-?[\d.]+)`)
	scriptCoordPattern = regexp.MustCompile(`center:\s*\[\s*(-?[\d.]+),\s*(-?[\d.]+)\s*\]`)
)

// scrapeResortPage scrapes an individual resort's snow report page.
func (s *Scraper) scrapeResortPage(ctx context.Context, path, state string) (*stores.Resort, error) {
	pageURL := s.absoluteURL(path)
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		return nil, nil
	}
	name := cleanPageTitle(title)

	resort := &stores.Resort{
		Slug:  slugify(name),
		Name:  name,
		State: state,
		URL:   pageURL,
	}

	if c, ok := lookupCoords(resort.Slug); ok {
		resort.Latitude = &c.Lat
		resort.Longitude = &c.Lng
	} else if lat, lng, ok := extractScriptCoords(doc); ok {
		resort.Latitude = &lat
		resort.Longitude = &lng
	}

	text := doc.Text()
	if m := basePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resort.BaseDepth = &n
		}
	}
	if m := newSnowPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			resort.NewSnow24h = &n
		}
	}
	if m := trailsRatioPattern.FindStringSubmatch(text); m != nil {
		open, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		resort.TrailsOpen, resort.TrailsTotal = &open, &total
	}
	if m := liftsRatioPattern.FindStringSubmatch(text); m != nil {
		open, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		resort.LiftsOpen, resort.LiftsTotal = &open, &total
	}

	resort.IsOpen = isOpen(resort.TrailsOpen, resort.LiftsOpen)
	return resort, nil
}

// extractScriptCoords pulls coordinates out of inline page scripts.
func extractScriptCoords(doc *goquery.Document) (lat, lng float64, ok bool) {
	found := false
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()

		latM := scriptLatPattern.FindStringSubmatch(text)
		lngM := scriptLngPattern.FindStringSubmatch(text)
		if latM != nil && lngM != nil {
			la, errA := strconv.ParseFloat(latM[1], 64)
			ln, errB := strconv.ParseFloat(lngM[1], 64)
			if errA == nil && errB == nil {
				lat, lng, found = la, ln, true
				return false
			}
		}

		if m := scriptCoordPattern.FindStringSubmatch(text); m != nil {
			la, errA := strconv.ParseFloat(m[1], 64)
			ln, errB := strconv.ParseFloat(m[2], 64)
			if errA == nil && errB == nil {
				lat, lng, found = la, ln, true
				return false
			}
		}
		return true
	})
	return lat, lng, found
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordUpstreamCall("onthesnow", "fetch", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.http.Do(req)
	if err != nil {
		s.metrics.RecordUpstreamError("onthesnow", "fetch")
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordUpstreamError("onthesnow", "fetch")
		return nil, fmt.Errorf("fetching %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// absoluteURL resolves a possibly-relative path against the base URL.
func (s *Scraper) absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func isOpen(trailsOpen, liftsOpen *int) bool {
	return (trailsOpen != nil && *trailsOpen > 0) || (liftsOpen != nil && *liftsOpen > 0)
}

func filterStates(names []string) []statePage {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var pages []statePage
	for _, p := range statePages {
		if want[strings.ToLower(p.Name)] {
			pages = append(pages, p)
		}
	}
	return pages
}
