// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shortsradar/internal/config"
	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
	"shortsradar/internal/metrics"
	"shortsradar/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	ranker trend.Ranker,
	collector *metrics.Collector,
	log logger.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(instrument(collector))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Create handler dependencies
	trendHandler := handlers.NewTrendHandler(ranker, log)

	wsConfig := handlers.DefaultWebSocketConfig()
	wsConfig.AllowedOrigins = cfg.CorsOrigins

	// Front end
	router.Get("/", handlers.IndexPage)
	router.Get("/trends", handlers.IndexPage)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// Rankings can take several upstream round trips
		r.With(middleware.Timeout(cfg.WriteTimeout)).Post("/trends", trendHandler.RankTrends)
	})

	// WebSocket endpoint for ranking queries
	router.Get("/ws/trends", handlers.TrendSocketHandler(ranker, log, wsConfig))

	// Prometheus exposition
	router.Method(http.MethodGet, "/metrics", collector.Handler())

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
