// Package server is the composition root: it connects the database,
// repositories, services, handlers and middleware, and runs the HTTP
// server until it is told to stop.
//
//	config → database.Connector → sqlrepo → service → handler → chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/database"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/middleware"
	"github.com/sakif/blog-api/internal/repository/sqlrepo"
	"github.com/sakif/blog-api/internal/service"
)

// Name is reported by GET /.
const Name = "Blog API"

const shutdownTimeout = 30 * time.Second

// Server owns the router and the database connector. The connector is
// closed when Start returns.
type Server struct {
	router    *chi.Mux
	config    *config.Config
	logger    *slog.Logger
	connector *database.Connector
	version   string
}

// New connects to the database (creating the schema if needed) and builds
// the router. A failed connection is returned, not retried.
func New(ctx context.Context, cfg *config.Config, connector *database.Connector, logger *slog.Logger, version string) (*Server, error) {
	db, err := connector.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", connector.Backend().Name(), err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		connector: connector,
		version:   version,
	}
	s.setupRoutes(db)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
// GET    /                               → banner
// GET    /health                         → database ping
// GET    /metrics                        → Prometheus
// GET    /swagger/json                   → OpenAPI 3 document
// GET    /swagger/index.html             → Swagger UI
// GET    /api/v1/users                   → list users
// POST   /api/v1/users                   → create user
// GET    /api/v1/users/{id}              → get user
// PUT    /api/v1/users/{id}              → update user
// DELETE /api/v1/users/{id}              → delete user
// PATCH  /api/v1/users/{id}/toggle-status
// GET    /api/v1/users/{id}/posts        → a user's posts
// GET    /api/v1/posts                   → list posts with authors
// GET    /api/v1/posts/published
// POST   /api/v1/posts, GET/PUT/DELETE /api/v1/posts/{id}
// PATCH  /api/v1/posts/{id}/publish, /api/v1/posts/{id}/unpublish
//
// Middleware runs in the order it is added: request id, real IP, CORS,
// metrics, logging, panic recovery.
func (s *Server) setupRoutes(db *database.DB) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		db.Collector(),
	)
	metrics := middleware.NewMetrics(registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.HandleNotFound)
	s.router.MethodNotAllowed(handler.HandleMethodNotAllowed)

	healthHandler := handler.NewHealthHandler(Name, s.version, s.connector.Backend().Name(), db, s.logger)
	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/health", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.router.Get("/swagger/json", handleOpenAPI)
	s.router.Get("/swagger/*", swaggerUI)
	s.router.Handle("/swagger", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))

	// Repositories get the concrete *database.DB; services only see the
	// repository interfaces.
	userService := service.NewUserService(sqlrepo.NewUserRepo(db), s.logger)
	postService := service.NewPostService(sqlrepo.NewPostRepo(db), s.logger)
	userHandler := handler.NewUserHandler(userService, postService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", userHandler.Routes)
		r.Route("/posts", postHandler.Routes)
	})
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer func() {
		if err := s.connector.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.config.Env),
			slog.String("database", s.connector.Backend().Name()),
			slog.String("version", s.version),
			slog.String("docs", "http://"+srv.Addr+"/swagger/index.html"),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
