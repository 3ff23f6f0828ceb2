package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/autou/mail-triage/internal/config"
)

// Server exposes the classification API over HTTP
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewServer creates the HTTP server and mounts the API routes
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	router.POST("/classify", handlers.Classify)
	router.POST("/classify/file", handlers.ClassifyFile)
	router.POST("/classify/batch", handlers.ClassifyBatch)
	router.POST("/upload", handlers.Upload)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", handlers.Metrics)
	router.POST("/metrics/reset", handlers.ResetMetrics)
	router.GET("/status", handlers.Status)

	server := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		cfg:    cfg,
		router: router,
		server: server,
		logger: logger,
	}
}

// Start begins serving; it blocks until Stop is called or a fatal error
// occurs
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.cfg.ListenAddress))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs each request with zap
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
