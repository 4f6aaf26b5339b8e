// Package server exposes video metadata and proxied streams over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/famomatic/ytstream/client"
	ytlog "github.com/famomatic/ytstream/internal/log"
)

const (
	DefaultAddr         = ":8080"
	DefaultRequestLimit = 120
	DefaultWindow       = time.Minute
	shutdownGracePeriod = 10 * time.Second
	readHeaderTimeout   = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr   string
	Client *client.Client
	Logger zerolog.Logger
	// RequestLimit requests per Window are allowed for each client IP.
	RequestLimit int
	Window       time.Duration
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	client *client.Client
	logger zerolog.Logger
	router chi.Router
}

func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestLimit <= 0 {
		cfg.RequestLimit = DefaultRequestLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Client == nil {
		cfg.Client = client.New(client.Config{Logger: cfg.Logger})
	}
	s := &Server{
		cfg:    cfg,
		client: cfg.Client,
		logger: ytlog.WithComponent(cfg.Logger, "server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/videos/{id}", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RequestLimit, s.cfg.Window))
		r.Get("/", s.handleInfo)
		r.Get("/formats", s.handleFormats)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}
