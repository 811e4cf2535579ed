package stores

import (
	"context"
	"errors"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleResort(slug string) *Resort {
	return &Resort{
		Slug:        slug,
		Name:        "Vail",
		State:       "Colorado",
		Latitude:    floatPtr(39.6403),
		Longitude:   floatPtr(-106.3742),
		BaseDepth:   intPtr(48),
		NewSnow24h:  intPtr(6),
		TrailsOpen:  intPtr(195),
		TrailsTotal: intPtr(195),
		LiftsOpen:   intPtr(31),
		LiftsTotal:  intPtr(31),
		IsOpen:      true,
		URL:         "https://www.onthesnow.com/colorado/vail/snow-report.html",
	}
}

func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Check that tables exist by querying them
	tables := []string{"resorts", "scrape_runs", "geocode_cache"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

func TestUpsertResortCreatesAndUpdates(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	resort := sampleResort("vail")
	if err := store.UpsertResort(ctx, resort); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	created, err := store.GetResort(ctx, "vail")
	if err != nil {
		t.Fatalf("failed to get resort: %v", err)
	}
	if created.Name != "Vail" {
		t.Errorf("expected name Vail, got %s", created.Name)
	}
	if !created.IsOpen {
		t.Error("expected resort to be open")
	}

	// Update the same slug with new conditions
	updated := sampleResort("vail")
	updated.BaseDepth = intPtr(60)
	updated.NewSnow24h = intPtr(12)
	updated.LastScraped = time.Now().UTC().Add(time.Minute)
	if err := store.UpsertResort(ctx, updated); err != nil {
		t.Fatalf("failed to upsert resort again: %v", err)
	}

	got, err := store.GetResort(ctx, "vail")
	if err != nil {
		t.Fatalf("failed to get resort after update: %v", err)
	}

	if got.BaseDepth == nil || *got.BaseDepth != 60 {
		t.Errorf("expected base depth 60, got %v", got.BaseDepth)
	}
	if got.ID != created.ID {
		t.Errorf("upsert created a new row: id %d != %d", got.ID, created.ID)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("upsert did not preserve created_at: %v != %v", got.CreatedAt, created.CreatedAt)
	}
	if !got.LastScraped.After(created.LastScraped) {
		t.Error("upsert did not refresh last_scraped")
	}
}

func TestGetResortNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	_, err := store.GetResort(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListResortsWithCoordinates(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	withCoords := sampleResort("vail")
	if err := store.UpsertResort(ctx, withCoords); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	noCoords := sampleResort("mystery-mountain")
	noCoords.Name = "Mystery Mountain"
	noCoords.Latitude = nil
	noCoords.Longitude = nil
	if err := store.UpsertResort(ctx, noCoords); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	all, err := store.ListResorts(ctx)
	if err != nil {
		t.Fatalf("failed to list resorts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 resorts, got %d", len(all))
	}

	located, err := store.ListResortsWithCoordinates(ctx)
	if err != nil {
		t.Fatalf("failed to list located resorts: %v", err)
	}
	if len(located) != 1 {
		t.Fatalf("expected 1 located resort, got %d", len(located))
	}
	if located[0].Slug != "vail" {
		t.Errorf("expected vail, got %s", located[0].Slug)
	}
}

func TestCountFreshResorts(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	stale := sampleResort("stale-mountain")
	stale.LastScraped = time.Now().UTC().Add(-2 * time.Hour)
	if err := store.UpsertResort(ctx, stale); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	fresh := sampleResort("fresh-mountain")
	if err := store.UpsertResort(ctx, fresh); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	count, err := store.CountFreshResorts(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("failed to count fresh resorts: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 fresh resort, got %d", count)
	}
}

func TestDeleteResort(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	if err := store.UpsertResort(ctx, sampleResort("vail")); err != nil {
		t.Fatalf("failed to upsert resort: %v", err)
	}

	if err := store.DeleteResort(ctx, "vail"); err != nil {
		t.Fatalf("failed to delete resort: %v", err)
	}

	if err := store.DeleteResort(ctx, "vail"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScrapeRunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	run := &ScrapeRun{
		ID:        "run-001",
		Status:    ScrapeRunStatusRunning,
		StartedAt: now,
	}
	if err := store.CreateScrapeRun(ctx, run); err != nil {
		t.Fatalf("failed to create scrape run: %v", err)
	}

	if err := store.FinishScrapeRun(ctx, run.ID, ScrapeRunStatusCompleted, 26, 312, nil); err != nil {
		t.Fatalf("failed to finish scrape run: %v", err)
	}

	runs, err := store.ListScrapeRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list scrape runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 scrape run, got %d", len(runs))
	}
	if runs[0].Status != ScrapeRunStatusCompleted {
		t.Errorf("expected status completed, got %s", runs[0].Status)
	}
	if runs[0].ResortsUpserted != 312 {
		t.Errorf("expected 312 resorts upserted, got %d", runs[0].ResortsUpserted)
	}
	if runs[0].CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	err = store.FinishScrapeRun(ctx, "missing", ScrapeRunStatusFailed, 0, 0, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGeocodeCache(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	entry := &GeocodeEntry{
		Query:     "denver, colorado",
		Latitude:  39.7392,
		Longitude: -104.9903,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := store.PutGeocodeEntry(ctx, entry); err != nil {
		t.Fatalf("failed to put geocode entry: %v", err)
	}

	got, err := store.GetGeocodeEntry(ctx, "denver, colorado")
	if err != nil {
		t.Fatalf("failed to get geocode entry: %v", err)
	}
	if got.Latitude != entry.Latitude || got.Longitude != entry.Longitude {
		t.Errorf("coordinates mismatch: got (%f, %f)", got.Latitude, got.Longitude)
	}

	// Expired entries must not be returned
	expired := &GeocodeEntry{
		Query:     "80302",
		Latitude:  40.0150,
		Longitude: -105.2705,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := store.PutGeocodeEntry(ctx, expired); err != nil {
		t.Fatalf("failed to put expired entry: %v", err)
	}

	if _, err := store.GetGeocodeEntry(ctx, "80302"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired entry, got %v", err)
	}

	purged, err := store.PurgeExpiredGeocodeEntries(ctx)
	if err != nil {
		t.Fatalf("failed to purge geocode cache: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged entry, got %d", purged)
	}
}

func TestResortConditionsHelpers(t *testing.T) {
	resort := sampleResort("vail")

	if got := resort.TrailsPercentOpen(); got != 100 {
		t.Errorf("expected 100%% trails open, got %d", got)
	}

	resort.TrailsOpen = intPtr(9)
	resort.TrailsTotal = intPtr(147)
	if got := resort.TrailsPercentOpen(); got != 6 {
		t.Errorf("expected 6%% trails open, got %d", got)
	}

	resort.TrailsTotal = nil
	if got := resort.TrailsPercentOpen(); got != 0 {
		t.Errorf("expected 0%% with unknown total, got %d", got)
	}

	summary := sampleResort("vail").ConditionsSummary()
	want := `48" base | 6" new | 195/195 trails`
	if summary != want {
		t.Errorf("expected %q, got %q", want, summary)
	}

	empty := &Resort{Slug: "empty", Name: "Empty"}
	if got := empty.ConditionsSummary(); got != "No data" {
		t.Errorf("expected No data, got %q", got)
	}
}
