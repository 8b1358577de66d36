// Package server exposes a registry's timings over HTTP for scraping
// and ad-hoc inspection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/opclock/opclock/exporters/prometheus"
	"github.com/opclock/opclock/pkg/logging"
	"github.com/opclock/opclock/pkg/ratelimit"
	"github.com/opclock/opclock/pkg/report"
	"github.com/opclock/opclock/pkg/timing"
)

// Config holds the diagnostics server settings.
type Config struct {
	Listen         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server serves /metrics, /timings and /healthz around one timing
// registry. The registry itself is single-threaded; the server owns the
// mutex that serializes every access, including writes funneled through
// Observe.
type Server struct {
	cfg Config
	log *logging.Logger

	mu  sync.Mutex
	reg *timing.Registry

	startTime  time.Time
	httpServer *http.Server
	router     *mux.Router
}

// New wires the router, rate limiting and exporter around reg.
func New(cfg Config, reg *timing.Registry, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		reg:       reg,
		startTime: time.Now(),
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	exporter := prometheus.NewExporter(s.snapshot)

	router := mux.NewRouter()
	router.Use(limiter.Middleware(ratelimit.IPKeyFunc))
	router.Handle("/metrics", exporter).Methods("GET")
	router.HandleFunc("/timings", s.handleTimings).Methods("GET")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	s.router = router
	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Observe times fn under name through the server's registry. The lock is
// held only around the registry calls, not while fn runs.
func (s *Server) Observe(name string, fn func()) {
	s.mu.Lock()
	s.reg.Start(name)
	s.mu.Unlock()

	fn()

	s.mu.Lock()
	s.reg.Stop(name)
	s.mu.Unlock()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Infof("diagnostics server listening on %s", s.cfg.Listen)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) snapshot() map[string][]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Snapshot()
}

func (s *Server) handleTimings(w http.ResponseWriter, r *http.Request) {
	rep := report.Build(s.snapshot())

	w.Header().Set("Content-Type", "application/json")
	if err := rep.ExportJSON(w); err != nil {
		s.log.Errorf("failed to write timings report: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}
