package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nolanlove/skiapp/pkg/geo"
	"github.com/nolanlove/skiapp/pkg/resorts"
	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

//go:embed static
var staticFiles embed.FS

// SearchService is the part of the search pipeline the server needs.
type SearchService interface {
	Search(ctx context.Context, req resorts.SearchRequest) (*resorts.SearchResponse, error)
	AllResorts(ctx context.Context) ([]*stores.Resort, error)
}

// Config configures the HTTP server.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the SkiSpot HTTP server.
type Server struct {
	cfg     Config
	search  SearchService
	store   stores.Store
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	httpSrv *http.Server
}

// New builds the server and its route table.
func New(cfg Config, search SearchService, store stores.Store, logger *telemetry.Logger, metrics *telemetry.Metrics) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:     cfg,
		search:  search,
		store:   store,
		logger:  logger.NewComponentLogger("server"),
		metrics: metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/resorts", s.handleResorts)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if metrics.Enabled() {
		mux.Handle("GET "+metrics.Path(), metrics.Handler())
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.instrument(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Zerolog().Info().Str("address", s.cfg.Address).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps the mux with request logging and metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(rec.status), elapsed)
		s.logger.Zerolog().Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "index page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := resorts.SearchRequest{
		Location: q.Get("location"),
		Priority: geo.ParsePriority(q.Get("priority")),
		SortBy:   geo.SortBy(q.Get("sort")),
	}
	if v := q.Get("radius"); v != "" {
		radius, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "radius must be a number")
			return
		}
		req.RadiusMiles = radius
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, resorts.ErrInvalidRequest):
			s.writeError(w, http.StatusBadRequest, "Location is required")
		case errors.Is(err, resorts.ErrLocationNotFound):
			s.writeError(w, http.StatusBadRequest, "Could not find location. Try a different format.")
		default:
			s.logger.WithError(err).Error("search failed")
			s.writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// resortSummary is the compact listing shape for the map view.
type resortSummary struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	State     string   `json:"state"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsOpen    bool     `json:"is_open"`
}

func (s *Server) handleResorts(w http.ResponseWriter, r *http.Request) {
	all, err := s.search.AllResorts(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("resort listing failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load resorts")
		return
	}

	summaries := make([]resortSummary, 0, len(all))
	for _, resort := range all {
		summaries = append(summaries, resortSummary{
			ID:        resort.ID,
			Name:      resort.Name,
			State:     resort.State,
			Latitude:  resort.Latitude,
			Longitude: resort.Longitude,
			IsOpen:    resort.IsOpen,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(summaries),
		"resorts": summaries,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(r.Context()); err != nil {
		s.logger.WithError(err).Error("health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
