// Package api exposes the recipe catalogue over HTTP: huma operations on a
// chi router, plus plain handlers for uploads, media and metrics.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listenupapp/recipebox-server/internal/metrics"
	"github.com/listenupapp/recipebox-server/internal/ratelimit"
)

const apiPrefix = "/api/v1"

// Options tune the HTTP surface.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	LoginPerMinute int
	LoginBurst     int
}

// Server is the HTTP entry point.
type Server struct {
	router       chi.Router
	api          huma.API
	services     *Services
	opts         Options
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer builds the router and registers every route.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.LoginPerMinute <= 0 {
		opts.LoginPerMinute = 10
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		router:       chi.NewRouter(),
		services:     services,
		opts:         opts,
		loginLimiter: ratelimit.New(opts.LoginPerMinute, opts.LoginBurst),
		logger:       logger,
	}
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("RecipeBox API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	RegisterErrorHandler()
	s.api = humachi.New(s.router, humaConfig)

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerRecipeRoutes()
	s.registerTagRoutes()
	s.registerIngredientRoutes()
	s.registerMediaRoutes()
	s.router.Handle("/metrics", promhttp.Handler())

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(metrics.Middleware)
	s.router.Use(s.authMiddleware)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used for OpenAPI export and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

var bearerSecurity = []map[string][]string{{"bearer": {}}}
