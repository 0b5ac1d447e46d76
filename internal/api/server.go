// Package api provides the HTTP control surface for docwatch: manual
// documentation requests, per-file trigger state, generation history, and
// the live result stream.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/docwatch/internal/generator"
	"github.com/listenupapp/docwatch/internal/sse"
	"github.com/listenupapp/docwatch/internal/store"
	"github.com/listenupapp/docwatch/internal/trigger"
	"github.com/listenupapp/docwatch/internal/validation"
)

// Controller is the part of the trigger controller the API drives.
type Controller interface {
	DocumentFile(ctx context.Context, path, guidance string) (generator.Result, error)
	Status(path string) trigger.Status
	ResetFileTracking(path string)
	Reset()
	ResolvePath(path string) string
}

// Services holds the dependencies handlers call into. History and Events
// may be nil.
type Services struct {
	Controller Controller
	History    store.History
	Events     *sse.Manager
}

// Options tunes the HTTP layer.
type Options struct {
	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string
	// RequestsPerMinute is the per-client budget. Zero uses the default.
	RequestsPerMinute int
	RequestBurst      int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	sseHandler  http.Handler
	router      *chi.Mux
	api         huma.API
	validator   *validation.Validator
	rateLimiter *RateLimiter
	opts        Options
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// sseHandler may be nil, in which case the event stream is not mounted.
func NewServer(services *Services, sseHandler http.Handler, opts Options, logger *slog.Logger) *Server {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = defaultRequestsPerMinute
	}
	if opts.RequestBurst <= 0 {
		opts.RequestBurst = defaultRequestBurst
	}

	s := &Server{
		services:    services,
		sseHandler:  sseHandler,
		router:      chi.NewRouter(),
		validator:   validation.New(),
		rateLimiter: NewRateLimiter(opts.RequestsPerMinute, time.Minute, opts.RequestBurst),
		opts:        opts,
		logger:      logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("docwatch API", "1.0.0")
	humaConfig.Info.Description = "Control surface for the docwatch documentation trigger"
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerFileRoutes()
	s.registerTrackingRoutes()

	// The event stream writes its own framing, so it bypasses huma.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}
