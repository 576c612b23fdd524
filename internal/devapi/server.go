// Package devapi is a local stand-in for the FreeDev Connect REST API. It
// mirrors the contract the CLI expects so development and integration tests
// do not depend on the hosted platform.
package devapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the devapi settings
type Config struct {
	Addr        string // listen address, e.g. ":8889"
	DatabaseURL string // sqlite path, ":memory:" for tests
	JWTSecret   string
}

// Server is the devapi HTTP server
type Server struct {
	router *gin.Engine
	db     *gorm.DB
	issuer *tokenIssuer
	logger zerolog.Logger
}

// New creates a new devapi server
func New(cfg Config, zlog zerolog.Logger) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	server := &Server{
		db:     db,
		issuer: newTokenIssuer(cfg.JWTSecret),
		logger: zlog,
	}
	server.setupRouter()

	return server, nil
}

// DB exposes the database handle so tests can seed fixtures
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Router exposes the handler for httptest servers
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")

	// Public endpoints
	api.POST("/auth/signup", s.signUp)
	api.POST("/auth/signin", s.signIn)
	api.GET("/projects", s.listProjects)
	api.GET("/projects/:id", s.getProject)
	api.GET("/users", s.listUsers)
	api.GET("/users/:id", s.getUser)

	// Authenticated endpoints
	authed := api.Group("")
	authed.Use(s.authMiddleware())
	{
		authed.GET("/auth/me", s.currentUser)

		authed.POST("/projects", s.createProject)
		authed.PUT("/projects/:id", s.updateProject)
		authed.DELETE("/projects/:id", s.deleteProject)
		authed.GET("/projects/:id/applications", s.projectApplications)

		authed.POST("/applications", s.createApplication)
		authed.GET("/applications/freelancer", s.myApplications)
		authed.PUT("/applications/:id", s.updateApplication)
		authed.DELETE("/applications/:id", s.deleteApplication)

		authed.GET("/users/profile", s.getProfile)
		authed.PUT("/users/profile", s.updateProfile)

		authed.GET("/freelance-dashboard", s.freelanceDashboard)
		authed.GET("/client-dashboard", s.clientDashboard)

		// Admin only
		adminRoutes := authed.Group("/users")
		adminRoutes.Use(s.requireAdmin())
		{
			adminRoutes.PUT("/:id/status", s.setUserStatus)
			adminRoutes.DELETE("/:id", s.deleteUser)
		}
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "freedev-devapi",
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully
func (s *Server) Start(addr string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting devapi server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
