// Package api exposes the bookshelf services over HTTP. Routes are huma
// operations mounted on a chi router; every response uses the shared JSON
// envelope and the browser session travels in a sealed cookie.
package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
	"github.com/bookshelfapp/bookshelf-server/internal/sse"
)

// DefaultCookieName is used when Options.Cookie.Name is empty.
const DefaultCookieName = "bookshelf_session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool // set in production, where the app is served over HTTPS
}

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	Cookie         CookieConfig
	// LoginLimiter throttles POST /api/auth/login per client IP. Nil disables it.
	LoginLimiter *ratelimit.KeyedRateLimiter
	// Events serves GET /api/activity/stream. Nil disables the live stream.
	Events *sse.Manager
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services     *Services
	sealer       *auth.CookieSealer
	cookie       CookieConfig
	loginLimiter *ratelimit.KeyedRateLimiter
	events       *sse.Manager
	router       *chi.Mux
	api          huma.API
	logger       *logger.Logger
}

// NewServer creates a Server with every route registered.
func NewServer(services *Services, sealer *auth.CookieSealer, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = DefaultCookieName
	}

	s := &Server{
		services:     services,
		sealer:       sealer,
		cookie:       opts.Cookie,
		loginLimiter: opts.LoginLimiter,
		events:       opts.Events,
		router:       chi.NewRouter(),
		logger:       log,
	}

	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("Bookshelf API", "1.0.0")
	humaConfig.Info.Description = "Shared reading list: items, tags, authors and activity."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"session": {
			Type: "apiKey",
			In:   "cookie",
			Name: opts.Cookie.Name,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(log.Logger)

	s.registerRoutes()

	return s
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.sessionMiddleware)

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", s.logger.Logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger.Logger)
	})
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerItemRoutes()
	s.registerTagRoutes()
	s.registerActivityRoutes()

	// Streaming stays outside huma so the envelope transformer never sees it.
	if s.events != nil {
		s.router.Method(http.MethodGet, "/api/activity/stream", sse.NewHandler(s.events, s.streamUser, s.logger.Logger))
	}
}

func (s *Server) streamUser(r *http.Request) (string, bool) {
	user := currentUser(r.Context())
	if user == nil {
		return "", false
	}
	return user.ID, true
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used by tests and the OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}
