package rest

import (
	"context"
	"fmt"
	"net/http"
	core_port "real-estate-web/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// Registry для /metrics. nil - создается новый реестр.
	Registry *prometheus.Registry
}

// Server - REST API dev-сервера.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter собирает маршруты. Вынесено отдельно для тестов через httptest.
func NewRouter(cfg ServerConfig, handlers *Handlers, auth *AuthMiddleware, baseLogger core_port.LoggerPort) http.Handler {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := newHTTPMetrics(registry)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(metrics.middleware)

		r.Post("/properties", handlers.SearchProperties)
		r.Get("/properties/slug/{slug}", handlers.GetPropertyBySlug)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/send", handlers.SendOTP)
			r.Post("/otp/verify", handlers.VerifyOTP)
			r.With(auth.Require).Get("/session", handlers.GetSession)
		})

		r.With(auth.Optional).Post("/inquiries", handlers.SubmitInquiry)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)
			r.Post("/wishlistSearch", handlers.SearchWishlist)
			r.Post("/wishlist", handlers.AddToWishlist)
			r.Delete("/wishlist/{propertyId}", handlers.RemoveFromWishlist)
			r.Delete("/account", handlers.DeleteAccount)
		})
	})

	return r
}

func NewServer(cfg ServerConfig, handlers *Handlers, auth *AuthMiddleware, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, handlers, auth, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(core_port.Fields{"component": "rest_server"}),
	}
}

// Start запускает HTTP-сервер и блокируется до остановки.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
