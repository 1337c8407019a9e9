package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imovelscan/leilao-api/internal/api/handlers"
	"github.com/imovelscan/leilao-api/internal/api/middleware"
	"github.com/imovelscan/leilao-api/internal/config"
	"github.com/imovelscan/leilao-api/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	Router   *gin.Engine
	config   *config.Config
	logger   *logrus.Logger
	services *services.Container
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()

	// Global middleware
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())
	s.Router.Use(middleware.Metrics())

	rateLimiter := middleware.NewRateLimiter(s.config.Security.RateLimit)

	// Health and metrics endpoints (no rate limiting)
	healthHandler := handlers.NewHealthHandler(s.services, s.logger)
	s.Router.GET("/health", healthHandler.GetHealth)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/health/live", healthHandler.GetLiveness)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Callback store: the workflow engine POSTs results here and the polling
	// coordinator reads them back. Not rate limited; the engine retries its
	// own callbacks and must never be throttled into data loss.
	callbackHandler := handlers.NewCallbackHandler(s.services.CallbackStore, s.logger)
	s.Router.POST("/extraction-callback", callbackHandler.Receber)
	s.Router.GET("/extraction-callback", callbackHandler.Entregar)

	// Swagger documentation
	if s.config.Server.Environment != "production" {
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// API v1 routes
	v1 := s.Router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		analiseHandler := handlers.NewAnaliseHandler(s.services.AnalysisService, s.services.CacheService, s.logger)
		analises := v1.Group("/analises")
		{
			analises.POST("", analiseHandler.Analisar)
			analises.GET("", analiseHandler.Consultar)
		}

		consultaHandler := handlers.NewConsultaHandler(s.services.ConsultaRepo, s.logger)
		consultas := v1.Group("/consultas")
		{
			consultas.POST("", consultaHandler.Criar)
			consultas.GET("", consultaHandler.Listar)
			consultas.GET("/:id", consultaHandler.Buscar)
			consultas.PUT("/:id", consultaHandler.Atualizar)
			consultas.DELETE("/:id", consultaHandler.Remover)
		}

		cacheHandler := handlers.NewCacheHandler(s.services.CacheService, s.logger)
		cache := v1.Group("/cache")
		{
			cache.GET("/stats", cacheHandler.GetStats)
			cache.DELETE("/clear", cacheHandler.Clear)
			cache.DELETE("", cacheHandler.Delete)
		}
	}

	// 404 handler
	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not Found",
			"message":   "The requested resource was not found",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
		})
	})

	// 405 handler
	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":     "Method Not Allowed",
			"message":   "The requested method is not allowed for this resource",
			"timestamp": time.Now(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		})
	})
}
