package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Hecoloko/procurement-app-sub000/config"
	"github.com/Hecoloko/procurement-app-sub000/internal/api/handlers"
	"github.com/Hecoloko/procurement-app-sub000/internal/api/middleware"
	"github.com/Hecoloko/procurement-app-sub000/internal/billing"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/search"
	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Deps carries everything the HTTP layer serves
type Deps struct {
	CartService    *services.CartService
	OrderService   *services.OrderService
	BillingService *services.BillingService
	Billback       billing.Service
	Loader         *services.Loader
	Elastic        *search.ElasticClient
	Metrics        *metrics.Metrics
	Tracer         tracing.Tracer
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	deps       Deps
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, deps Deps) *Server {
	server := &Server{
		config: cfg,
		deps:   deps,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Tracing(s.deps.Tracer))

	handlers.NewCartHandler(s.deps.CartService, s.deps.Tracer).RegisterRoutes(router)
	handlers.NewOrderHandler(s.deps.OrderService, s.deps.Elastic, s.deps.Tracer).RegisterRoutes(router)
	handlers.NewBillingHandler(s.deps.BillingService, s.deps.Billback, s.deps.Tracer).RegisterRoutes(router)
	handlers.NewCompanyHandler(s.deps.Loader, s.deps.Tracer).RegisterRoutes(router)
	handlers.NewMetricsHandler(s.deps.Metrics, s.deps.Tracer).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
