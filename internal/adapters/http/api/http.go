// Package api exposes run progress and Prometheus metrics over HTTP while
// an aggregation is in flight.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/okian/brc/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server wires the monitoring routes.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler *MetricsHandler
	statsHandler   *StatsHandler

	mu  sync.Mutex
	srv *http.Server
}

// NewServer creates a new API server with all handlers.
func NewServer(statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
}

// Start listens on addr and serves the routes in the background until
// Shutdown is called. It returns the bound address, which differs from addr
// when addr asks for an ephemeral port.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil, fmt.Errorf("%w: already started", ErrServe)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}

	mux := http.NewServeMux()
	s.Register(ctx, mux)
	s.srv = &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log := logger.Named("http")
	log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "HTTP server failed", logger.Error(err))
		}
	}(s.srv)
	return ln.Addr(), nil
}

// Shutdown stops a started server gracefully. It is a no-op otherwise.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.srv = nil
	if err != nil {
		return fmt.Errorf("%w: shutdown: %w", ErrServe, err)
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
