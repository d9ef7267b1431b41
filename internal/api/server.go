package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedlint/internal/api/handlers"
	"feedlint/internal/api/middleware"
	"feedlint/internal/config"
	"feedlint/internal/database"
	"feedlint/internal/logger"
	"feedlint/internal/validation"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	meta := db.NewMetaStore(cfg.ResultsMaxPayloadBytes)
	factory := validation.NewFactory(db.NewProductResolver(), logger)

	// Initialize handlers
	resultsHandler := handlers.NewResultsHandler(meta, logger)
	validateHandler := handlers.NewValidateHandler(
		factory, db.NewFeedResolver(), db.NewProductResolver(), meta, cfg.FallbackProductCap, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/merchants", validateHandler.Merchants)

		feeds := v1.Group("/feeds")
		{
			feeds.POST("/:id/validate", validateHandler.Run)
			feeds.GET("/:id/results", resultsHandler.List)
			feeds.GET("/:id/results/summary", resultsHandler.Summary)
			feeds.GET("/:id/results/attributes", resultsHandler.AttributeSummary)
			feeds.GET("/:id/results/rules", resultsHandler.RuleSummary)
			feeds.GET("/:id/results/products", resultsHandler.TopProducts)
			feeds.GET("/:id/results/export", resultsHandler.Export)
			feeds.DELETE("/:id/results", resultsHandler.Clear)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the Gin router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
