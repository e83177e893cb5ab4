// Package api exposes collected posts and generated summaries over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/store"
	"github.com/calebmoore/tweetwatch/pkg/summarize"
)

// Config holds HTTP server settings
type Config struct {
	Addr   string
	Logger *logrus.Logger
}

// Server serves the JSON API
type Server struct {
	store      *store.Store
	summarizer *summarize.Summarizer
	logger     *logrus.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer wires routes onto a gin engine
func NewServer(st *store.Store, sm *summarize.Summarizer, cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		store:      st,
		summarizer: sm,
		logger:     cfg.Logger,
		engine:     engine,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.Use(s.requestLogger())

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/posts", s.getPosts)

		summaries := api.Group("/summaries/:period")
		{
			summaries.GET("/latest", s.getLatestSummary)
			summaries.GET("/history", s.getSummaryHistory)
			summaries.GET("/:id", s.getSummaryByID)
			summaries.POST("/generate", s.generateSummary)
		}
	}
}

// requestLogger logs each request with logrus fields
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("Request handled")
	}
}

// Handler exposes the underlying engine, used by tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called
func (s *Server) Run() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
