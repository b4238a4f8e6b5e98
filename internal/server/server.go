// Package server implements the finalize service.
//
// The service turns a submitted card stack into an algorithm document (see
// package analysis), records each request in a history store, and offers
// the preset library, card generation and scene rendering over HTTP:
//
//	POST /api/generate_encryption   {cards, timestamp} -> {algorithm, analysis}
//	GET  /api/history               {records}
//	GET  /api/history/{id}          one record
//	GET  /api/status                liveness and endpoint list
//	GET  /api/presets               {cards}
//	GET  /api/presets/{id}          one preset
//	POST /api/cards/generate        generator parameters -> card
//	POST /api/scene                 {cards, format, width, height} -> rendering
//	GET  /metrics                   Prometheus metrics
//
// Errors are JSON objects {"error": message, "code": code}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/cardstack/internal/config"
	"github.com/matzehuels/cardstack/pkg/cache"
	"github.com/matzehuels/cardstack/pkg/circuit/library"
	"github.com/matzehuels/cardstack/pkg/history"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server is the finalize service.
type Server struct {
	cfg     config.ServerConfig
	logger  *log.Logger
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	history history.Store
	library *library.Library
	metrics *Metrics
	now     func() time.Time
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCache memoizes algorithm documents and scenes in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) { s.cache, s.ttl = c, ttl }
}

// WithKeyer sets how cache keys are derived.
func WithKeyer(k cache.Keyer) Option { return func(s *Server) { s.keyer = k } }

// WithHistory sets the history store.
func WithHistory(h history.Store) Option { return func(s *Server) { s.history = h } }

// WithLibrary sets the preset library. Generated cards saved through the API
// are added to it.
func WithLibrary(l *library.Library) Option { return func(s *Server) { s.library = l } }

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithClock sets the time source used for history records.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New builds a server. Unset dependencies default to a null cache, an
// in-memory history, the built-in presets and a fresh metrics registry.
func New(cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  log.New(io.Discard),
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.DefaultTTL,
		history: history.NewMemoryStore(),
		library: library.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.router = s.routes()
	return s
}

// Metrics returns the server's collector.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(maxBodyBytes))
		r.Post("/generate_encryption", s.handleGenerateEncryption)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{id}", s.handleHistoryRecord)
		r.Get("/status", s.handleStatus)
		r.Get("/presets", s.handlePresets)
		r.Get("/presets/{id}", s.handlePreset)
		r.Post("/cards/generate", s.handleGenerateCard)
		r.Post("/scene", s.handleScene)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
