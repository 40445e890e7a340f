// Package serve exposes the extractor over HTTP.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/metrics"
)

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(logger *slog.Logger, h *Handler, m *metrics.Registry) *gin.Engine {
	router := gin.New()
	router.Use(recoveryMiddleware(logger))
	router.Use(loggerMiddleware(logger))

	router.GET("/healthz", h.Health)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/v1")
	v1.POST("/extract", h.Extract)
	v1.POST("/classify", h.Classify)

	return router
}

// Server is an HTTP server with graceful shutdown.
type Server struct {
	server *http.Server
	logger *slog.Logger
	cfg    models.ServeConfig
}

func NewServer(cfg models.ServeConfig, logger *slog.Logger, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
		cfg:    cfg,
	}
}

// start listens in a goroutine. The channel receives a listen error, if any,
// and is closed when the server stops.
func (s *Server) start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "address", s.server.Addr,
			"read_timeout", s.server.ReadTimeout, "write_timeout", s.server.WriteTimeout)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown stops the server, waiting at most the configured shutdown timeout
// for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// Run serves until SIGINT, SIGTERM or ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := s.start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")
	}

	return s.Shutdown(context.Background())
}
