package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"fxwarehouse/service/config"
	"fxwarehouse/service/db"
	"fxwarehouse/service/deal"
	"fxwarehouse/service/metrics"
)

// Server represents the HTTP server for the deal warehouse.
type Server struct {
	addr     string
	cfg      *config.Config
	store    *db.Store
	importer *deal.Importer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	server   *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The metrics collector is optional - if nil, the metrics endpoint won't be
// available and no request metrics are recorded.
func New(addr string, cfg *config.Config, store *db.Store, importer *deal.Importer, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		cfg:      cfg,
		store:    store,
		importer: importer,
		metrics:  m,
		logger:   logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Import rate limiter is shared across requests; uploads are the only
	// expensive endpoint.
	importLimiter := rate.NewLimiter(rate.Limit(s.cfg.ImportRateLimit), s.cfg.ImportRateBurst)

	importHandler := rateLimitMiddleware(importLimiter)(
		handleImportDeals(s.importer, s.cfg.MaxUploadBytes, s.metrics, s.logger),
	)

	// Deal routes
	mux.Handle("POST /api/v1/deals/import",
		metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/deals/import")(importHandler))
	mux.Handle("GET /api/v1/deals",
		metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/deals")(handleListDeals(s.store, s.logger)))
	mux.Handle("GET /api/v1/deals/{dealId}",
		metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/deals/{dealId}")(handleGetDeal(s.store, s.logger)))

	// Health check endpoint
	mux.Handle("GET /health", handleHealth())

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS
// preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects requests once the limiter is exhausted.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
