package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kubetopo/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 32 << 20

const (
	defaultIdleTimeout  = 120 * time.Second
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 120 * time.Second
)

// Server serves the layout API.
type Server struct {
	srv      *http.Server
	router   *chi.Mux
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	maxBody  int64
	metrics  http.Handler
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the request logger. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		s.logger = l
		return nil
	}
}

// WithDefaults sets the pipeline options requests start from. Fields a
// request sets override them.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) error {
		s.defaults = opts
		return nil
	}
}

// WithMaxBodyBytes bounds the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive, got %d", n)
		}
		s.maxBody = n
		return nil
	}
}

// WithMetrics mounts h on /metrics. Pass nil to use the default
// Prometheus registry.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) error {
		if h == nil {
			h = promhttp.Handler()
		}
		s.metrics = h
		return nil
	}
}

// New creates a Server bound to addr that runs layouts through runner.
func New(addr string, runner *pipeline.Runner, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("nil runner")
	}
	mux := chi.NewRouter()
	s := &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			IdleTimeout:  defaultIdleTimeout,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		router:  mux,
		runner:  runner,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("configure server: %w", err)
		}
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.requestID, middleware.Recoverer, s.instrument)

	s.router.Get("/healthz", handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// ListenAndServe blocks serving requests until Shutdown is called, in
// which case it returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// baseOptions copies the defaults so request decoding never writes into
// their slices.
func (s *Server) baseOptions() pipeline.Options {
	opts := s.defaults
	opts.Config.TypeOrder = slices.Clone(opts.Config.TypeOrder)
	opts.Config.ControllerTypes = slices.Clone(opts.Config.ControllerTypes)
	opts.Formats = slices.Clone(opts.Formats)
	return opts
}
