package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/tubegram/internal/api/handlers"
	"github.com/amaumene/tubegram/internal/api/middleware"
	"github.com/amaumene/tubegram/internal/config"
	"github.com/amaumene/tubegram/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server     *http.Server
	db         *models.Database
	dispatcher handlers.Dispatcher
	logger     *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, dispatcher handlers.Dispatcher, logger *logrus.Logger) *Server {
	s := &Server{
		db:         db,
		dispatcher: dispatcher,
		logger:     logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger, cfg.WebhookSecret),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// WebhookPath returns the route Telegram posts updates to
func WebhookPath(secret string) string {
	return "/webhook/" + secret
}

// Handler returns the root handler, including middleware
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.Handle("/{$}", healthHandler)
	mux.Handle("/health", healthHandler)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, cfg.TranscodeAvailable, cfg.CookiesConfigured(), s.logger)
	mux.Handle("/status", statusHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Telegram webhook
	webhookHandler := handlers.NewWebhookHandler(s.dispatcher, s.logger)
	mux.Handle(WebhookPath(cfg.WebhookSecret), webhookHandler)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
