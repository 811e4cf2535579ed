package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

func testTelemetry(t *testing.T) (*telemetry.Logger, *telemetry.Metrics, *telemetry.Tracer) {
	t.Helper()

	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
		Level:  "error",
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	metrics, err := telemetry.NewMetrics(telemetry.MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	tracer, err := telemetry.NewTracer(telemetry.TracingConfig{Enabled: false}, "skispot-test", "dev", "test")
	if err != nil {
		t.Fatalf("failed to create tracer: %v", err)
	}

	return logger, metrics, tracer
}

func setupTestStore(t *testing.T) stores.Store {
	t.Helper()

	store, err := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestScrapeAllSingleState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/colorado/skireport.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(stateTableHTML))
	}))
	defer server.Close()

	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{BaseURL: server.URL, Timeout: 2 * time.Second}, store, logger, metrics, tracer)

	ctx := context.Background()
	run, err := s.ScrapeAll(ctx, []string{"Colorado"})
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	if run.Status != stores.ScrapeRunStatusCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.StatesScraped != 1 {
		t.Errorf("states scraped = %d, want 1", run.StatesScraped)
	}
	if run.ResortsUpserted != 2 {
		t.Errorf("resorts upserted = %d, want 2", run.ResortsUpserted)
	}

	vail, err := store.GetResort(ctx, "vail")
	if err != nil {
		t.Fatalf("failed to load vail: %v", err)
	}
	if vail.State != "Colorado" || !vail.IsOpen {
		t.Errorf("unexpected resort: %+v", vail)
	}
	if vail.URL != server.URL+"/colorado/vail/snow-report.html" {
		t.Errorf("url not resolved: %q", vail.URL)
	}

	runs, err := store.ListScrapeRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("expected recorded run %s, got %v", run.ID, runs)
	}
}

func TestScrapeAllUnknownState(t *testing.T) {
	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{BaseURL: "http://127.0.0.1:0"}, store, logger, metrics, tracer)

	if _, err := s.ScrapeAll(context.Background(), []string{"Atlantis"}); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestScrapeAllRecordsFailedRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{BaseURL: server.URL, Timeout: 2 * time.Second}, store, logger, metrics, tracer)

	ctx := context.Background()
	if _, err := s.ScrapeAll(ctx, []string{"Colorado"}); err == nil {
		t.Fatal("expected error when every state fails")
	}

	runs, err := store.ListScrapeRuns(ctx, 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != stores.ScrapeRunStatusFailed {
		t.Errorf("expected failed run, got %v", runs)
	}
}

func TestRefreshServesFreshCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(stateTableHTML))
	}))
	defer server.Close()

	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		FreshThreshold: 10,
	}, store, logger, metrics, tracer)

	ctx := context.Background()

	// Seed enough fresh resorts to clear the threshold
	if _, err := s.SeedSamples(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	resorts, err := s.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(resorts) != len(sampleResorts) {
		t.Errorf("expected %d resorts, got %d", len(sampleResorts), len(resorts))
	}
	if hits != 0 {
		t.Errorf("fresh cache must not trigger a scrape, got %d fetches", hits)
	}
}

func TestRefreshScrapesWhenStale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stateTableHTML))
	}))
	defer server.Close()

	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		FreshThreshold: 1,
		Concurrency:    2,
	}, store, logger, metrics, tracer)

	resorts, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(resorts) == 0 {
		t.Error("expected resorts after refresh")
	}
}

func TestSeedSamples(t *testing.T) {
	logger, metrics, tracer := testTelemetry(t)
	store := setupTestStore(t)
	s := New(Config{}, store, logger, metrics, tracer)

	ctx := context.Background()
	n, err := s.SeedSamples(ctx)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if n != len(sampleResorts) {
		t.Errorf("seeded %d, want %d", n, len(sampleResorts))
	}

	vail, err := store.GetResort(ctx, "vail")
	if err != nil {
		t.Fatalf("failed to load vail: %v", err)
	}
	if vail.BaseDepth == nil || *vail.BaseDepth != 48 {
		t.Errorf("base depth = %v, want 48", vail.BaseDepth)
	}
	if !vail.HasCoordinates() {
		t.Error("seeded resorts must carry coordinates")
	}
}
