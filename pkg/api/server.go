package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sqlkit/paginate/pkg/auth"
	"github.com/sqlkit/paginate/pkg/config"
	"github.com/sqlkit/paginate/pkg/database"
	"github.com/sqlkit/paginate/pkg/paginate"
)

// Server represents the API server
type Server struct {
	config     *config.Config
	db         *database.DB
	executor   *database.Executor
	dialect    paginate.Dialect
	jwtManager *auth.JWTManager
	logger     *zap.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, db *database.DB, jwtManager *auth.JWTManager, logger *zap.Logger) *Server {
	server := &Server{
		config:     cfg,
		db:         db,
		executor:   database.NewExecutor(db.DB),
		dialect:    paginate.Postgres{},
		jwtManager: jwtManager,
		logger:     logger,
	}

	// Configure gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = gin.New()

	// Global middleware
	s.router.Use(s.requestLogMiddleware())
	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.errorHandlerMiddleware())

	// Health endpoint
	s.router.GET("/healthz", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	{
		// Public endpoints (no authentication required)
		v1.POST("/sessions", s.createSessionHandler)

		// Protected endpoints (authentication required)
		protected := v1.Group("/")
		protected.Use(auth.JWTMiddleware(s.jwtManager))
		{
			protected.GET("/users", s.listUsersHandler)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	address := fmt.Sprintf(":%d", s.config.API.Port)
	s.logger.Info("starting API server", zap.String("address", address))

	s.httpServer = &http.Server{
		Addr:         address,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.config.API.TLSCert != "" && s.config.API.TLSKey != "" {
		if _, err := os.Stat(s.config.API.TLSCert); err != nil {
			return fmt.Errorf("TLS certificate file error: %w", err)
		}
		if _, err := os.Stat(s.config.API.TLSKey); err != nil {
			return fmt.Errorf("TLS key file error: %w", err)
		}

		return s.httpServer.ListenAndServeTLS(s.config.API.TLSCert, s.config.API.TLSKey)
	}

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
