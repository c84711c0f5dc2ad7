// Package server serves the chart and its renditions over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/render"
)

// Config configures the server.
type Config struct {
	Build  einchart.Options
	Render render.Options
	// Refresh is the interval between background rebuilds (0 disables them).
	Refresh time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server holds the most recently built chart.
type Server struct {
	fetcher einchart.Fetcher
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics

	mu      sync.RWMutex
	chart   *models.Chart
	builtAt time.Time
}

// New returns a Server building its chart from f. The chart is built on
// first use.
func New(f einchart.Fetcher, cfg Config, opts ...Option) *Server {
	s := &Server{
		fetcher: f,
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Refresh fetches the data and replaces the current chart.
func (s *Server) Refresh(ctx context.Context) (*models.Chart, error) {
	start := time.Now()
	chart, err := einchart.Build(ctx, s.fetcher, s.cfg.Build)
	if err != nil {
		s.metrics.observeBuild(start, 0, err)
		s.logger.Error("chart build failed", "err", err)
		return nil, err
	}
	s.metrics.observeBuild(start, chart.Series.Len(), nil)

	s.mu.Lock()
	s.chart = chart
	s.builtAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("chart built",
		"source", chart.Source,
		"observations", chart.Series.Len(),
		"max", chart.Scale.Max,
		"step", chart.Scale.Step,
	)
	return chart, nil
}

// Chart returns the current chart, building it on first use.
func (s *Server) Chart(ctx context.Context) (*models.Chart, error) {
	s.mu.RLock()
	chart := s.chart
	s.mu.RUnlock()
	if chart != nil {
		return chart, nil
	}
	return s.Refresh(ctx)
}

// Run rebuilds the chart every Refresh interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	if s.cfg.Refresh <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/chart", s.handleChart).Methods(http.MethodGet)
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/anchor", s.handleAnchor).Methods(http.MethodPost)
	r.HandleFunc("/chart.{format:html|png|svg|xlsx|json}", s.handleRender).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/chart.html", http.StatusFound)
	}).Methods(http.MethodGet)
	return r
}

// ListenAndServe serves until ctx is done, refreshing in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{"status": "ok"}
	if s.chart != nil {
		out["source"] = s.chart.Source
		out["observations"] = s.chart.Series.Len()
		out["built_at"] = s.builtAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.Chart(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "build_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	chart, err := s.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "build_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":       chart.Source,
		"observations": chart.Series.Len(),
		"scale":        chart.Scale,
	})
}

// anchorRequest is the body of /api/anchor.
type anchorRequest struct {
	Active []models.ChartElement `json:"active"`
	Cursor models.Point          `json:"cursor"`
}

func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	var req anchorRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	anchor := s.cfg.Build.Selector().Select(req.Active, req.Cursor)
	writeJSON(w, http.StatusOK, map[string]any{"anchor": anchor})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_format", err)
		return
	}

	chart, err := s.Chart(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "build_failed", err)
		return
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, format, chart, s.cfg.Render); err != nil {
		if errors.Is(err, render.ErrNoData) {
			writeError(w, http.StatusNotFound, "no_data", err)
			return
		}
		s.logger.Error("render failed", "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == render.FormatXLSX {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "einchart.xlsx"))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, map[string]any{"error": code, "detail": err.Error()})
}
