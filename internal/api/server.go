// Package api serves the analysis engine over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"codecoach/internal/config"
	"codecoach/internal/engine"
	"codecoach/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	router  chi.Router
	server  *http.Server
	addr    string
	logger  *slog.Logger
	engine  *engine.Engine
	store   *storage.Store
	metrics *Metrics
	started time.Time
	maxBody int64
}

// NewServer creates a new HTTP server instance. store may be nil, in which
// case learner endpoints answer 503 and analyses are not recorded.
func NewServer(cfg *config.Config, eng *engine.Engine, store *storage.Store, logger *slog.Logger) *Server {
	s := &Server{
		addr:    cfg.Server.Addr,
		logger:  logger,
		engine:  eng,
		store:   store,
		metrics: NewMetrics(),
		started: time.Now(),
		maxBody: cfg.Server.MaxBodyBytes,
	}

	s.router = s.routes()
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}
