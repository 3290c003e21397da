// api/internal/api/router/router.go
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cifra/api/internal/api/handlers"
	auth_middleware "cifra/api/internal/api/middleware"
	delivery "cifra/api/internal/delivery/http"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins []string
	CipherHandler  *handlers.CipherHandler
	EventsHandler  *handlers.EventsHandler
	WSHandler      *handlers.WebSocketHandler
	HealthHandler  *delivery.HealthHandler
	AuthMiddleware *auth_middleware.AuthMiddleware
	Logger         *slog.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1_048_576
	}

	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(auth_middleware.MaxBytes(cfg.MaxBodyBytes))
	r.Use(cfg.AuthMiddleware.RateLimit)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// =========================================================================
	// 2. API v1 Routing Tree
	// =========================================================================

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.AuthMiddleware.RequireAuthentication)

		// Request/response routes are bounded; streams live until the client leaves.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Get("/ciphers", cfg.CipherHandler.List)
			r.Post("/ciphers/{kind}/encrypt", cfg.CipherHandler.Encrypt)
			r.Post("/ciphers/{kind}/decrypt", cfg.CipherHandler.Decrypt)
			r.Post("/batch", cfg.CipherHandler.RunBatch)
		})

		r.Group(func(r chi.Router) {
			if cfg.EventsHandler != nil {
				r.Get("/events", cfg.EventsHandler.Stream)
			}
			if cfg.WSHandler != nil {
				r.Get("/ws", cfg.WSHandler.Live)
			}
		})
	})

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
