package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nolanlove/skiapp/pkg/resorts"
	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

type fakeSearch struct {
	resp    *resorts.SearchResponse
	err     error
	all     []*stores.Resort
	allErr  error
	lastReq resorts.SearchRequest
}

func (f *fakeSearch) Search(_ context.Context, req resorts.SearchRequest) (*resorts.SearchResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSearch) AllResorts(_ context.Context) ([]*stores.Resort, error) {
	return f.all, f.allErr
}

func newTestServer(t *testing.T, search SearchService) *Server {
	t.Helper()

	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
		Level:  "error",
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	metrics, err := telemetry.NewMetrics(telemetry.MetricsConfig{
		Enabled:   true,
		Namespace: "skispot_test",
	})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

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

	return New(Config{Address: "127.0.0.1:0"}, search, store, logger, metrics)
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexServesHTML(t *testing.T) {
	srv := newTestServer(t, &fakeSearch{})

	rec := doRequest(t, srv, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "SkiSpot") {
		t.Error("index page missing app name")
	}
}

func TestSearchEndpoint(t *testing.T) {
	hours := 1.5
	fake := &fakeSearch{
		resp: &resorts.SearchResponse{
			UserLocation: resorts.UserLocation{Latitude: 39.7, Longitude: -105.0, Query: "Denver, CO"},
			Radius:       100,
			Count:        1,
			Resorts: []resorts.Result{{
				Name:       "Vail",
				State:      "Colorado",
				IsOpen:     true,
				DriveMiles: 97.1,
				DriveHours: &hours,
				DriveTime:  "1h 30min",
			}},
			Timings: map[string]int64{"total_ms": 42},
		},
	}
	srv := newTestServer(t, fake)

	rec := doRequest(t, srv, http.MethodGet, "/api/search?location=Denver%2C+CO&radius=100&priority=distance")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if fake.lastReq.Location != "Denver, CO" || fake.lastReq.RadiusMiles != 100 {
		t.Errorf("request not decoded: %+v", fake.lastReq)
	}
	if string(fake.lastReq.Priority) != "distance" {
		t.Errorf("priority = %q, want distance", fake.lastReq.Priority)
	}

	var body resorts.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.Count != 1 || body.Resorts[0].Name != "Vail" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestSearchEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		searchErr  error
		wantStatus int
	}{
		{"missing location", "/api/search", resorts.ErrInvalidRequest, http.StatusBadRequest},
		{"bad radius", "/api/search?location=Denver&radius=abc", nil, http.StatusBadRequest},
		{"unknown location", "/api/search?location=Nowhere", resorts.ErrLocationNotFound, http.StatusBadRequest},
		{"internal failure", "/api/search?location=Denver", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeSearch{err: tt.searchErr})
			rec := doRequest(t, srv, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error responses must be JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error response missing error field")
			}
		})
	}
}

func TestResortsEndpoint(t *testing.T) {
	lat, lng := 39.6403, -106.3742
	srv := newTestServer(t, &fakeSearch{
		all: []*stores.Resort{
			{ID: 1, Name: "Vail", State: "Colorado", Latitude: &lat, Longitude: &lng, IsOpen: true},
		},
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/resorts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Count   int             `json:"count"`
		Resorts []resortSummary `json:"resorts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Count != 1 || body.Resorts[0].Name != "Vail" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeSearch{})

	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeSearch{})

	rec := doRequest(t, srv, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeSearch{})

	rec := doRequest(t, srv, http.MethodPost, "/api/search")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
