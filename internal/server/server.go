// Package server implements the preset conversion HTTP API.
//
// The API has a single conversion endpoint accepting a multipart upload, a health
// check and a Prometheus metrics endpoint. Optionally it also serves a static
// single page web UI from a directory.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/preset/internal/config"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/metrics"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "preset-converter-api"

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithConverter sets the [convert.Converter] used to serve conversions.
func WithConverter(converter convert.Converter) Option {
	return func(s *Server) {
		s.converter = converter
	}
}

// WithMetrics sets the [metrics.Metrics] the server records to and
// exposes on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// Server is the preset conversion HTTP server.
type Server struct {
	logger    *log.Logger       // Request and lifecycle logs
	metrics   *metrics.Metrics  // Prometheus collectors
	handler   http.Handler      // The fully wrapped router
	converter convert.Converter // Does the actual converting
	cfg       config.Config     // Server configuration
}

// New returns a new [Server].
//
// The config is validated and an error returned if it is not valid.
func New(cfg config.Config, logger *log.Logger, options ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger.Prefixed("server"),
		converter: convert.New(),
	}

	for _, option := range options {
		option(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	s.handler = s.routes()

	return s, nil
}

// Handler returns the server's root [http.Handler].
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled,
// at which point in flight requests are given the configured shutdown timeout to
// complete.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, see [Server.ListenAndServe].
//
// ln is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errs := make(chan error, 1)

	go func() {
		errs <- srv.Serve(ln)
	}()

	s.logger.Info(
		"Listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("static", s.cfg.StaticDir),
	)

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down", slog.Duration("timeout", s.cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not shut down cleanly: %w", err)
		}

		// Serve returns ErrServerClosed straight away once Shutdown is called
		<-errs

		return nil
	}
}

// routes builds the router and wraps it in the middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("/api/convert", s.handleMethodNotAllowed)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("/api/health", s.handleMethodNotAllowed)
	mux.HandleFunc("/api/", s.handleNotFound)
	mux.Handle("GET /metrics", s.metrics.Handler())

	if s.cfg.StaticDir != "" {
		mux.Handle("/", spa(s.cfg.StaticDir, http.HandlerFunc(s.handleNotFound)))
	} else {
		mux.HandleFunc("/", s.handleNotFound)
	}

	return s.requestID(s.logRequests(cors(mux)))
}
