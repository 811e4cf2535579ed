package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nolanlove/skiapp/pkg/geocode"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

func newTestClient(t *testing.T, baseURL string) *Client {
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

	return NewClient(ClientConfig{BaseURL: baseURL, Timeout: 2 * time.Second}, logger, metrics)
}

func TestDrivingRoute(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		// ~97.1 miles, ~1.82 hours
		w.Write([]byte(`{"code": "Ok", "routes": [{"distance": 156234.5, "duration": 6540.2}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	denver := geocode.Point{Latitude: 39.7392, Longitude: -104.9903}
	vail := geocode.Point{Latitude: 39.6403, Longitude: -106.3742}

	route, err := client.DrivingRoute(context.Background(), denver, vail)
	if err != nil {
		t.Fatalf("routing failed: %v", err)
	}

	if route.Miles != 97.1 {
		t.Errorf("expected 97.1 miles, got %v", route.Miles)
	}
	if route.Hours != 1.82 {
		t.Errorf("expected 1.82 hours, got %v", route.Hours)
	}

	// Coordinates go on the path in lng,lat order
	if !strings.HasPrefix(gotPath, "/route/v1/driving/-104.990300,39.739200;-106.374200,39.640300") {
		t.Errorf("unexpected request path: %s", gotPath)
	}
}

func TestDrivingRouteNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.DrivingRoute(context.Background(), geocode.Point{}, geocode.Point{Latitude: 1, Longitude: 1})
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}

func TestDrivingRouteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.DrivingRoute(context.Background(), geocode.Point{}, geocode.Point{})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if errors.Is(err, ErrNoRoute) {
		t.Error("transport failures must be distinguishable from NoRoute")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0 min"},
		{0.75, "45 min"},
		{1, "1 hr"},
		{2.25, "2 hr 15 min"},
		{27, "1 day 3 hr"},
		{24, "1 day"},
		{51, "2 days 3 hr"},
		{48, "2 days"},
		{-1, "0 min"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.hours); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestFormatDriveTime(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0.75, "45min"},
		{2, "2h"},
		{2.25, "2h 15min"},
		{0, "0min"},
	}

	for _, tt := range tests {
		if got := FormatDriveTime(tt.hours); got != tt.want {
			t.Errorf("FormatDriveTime(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
