// Package api exposes the drill navigator and analysis snapshots over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"gospc/app"
	"gospc/internal"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP shell around one analysis service and its navigator
type Server struct {
	router    *gin.Engine
	analysis  *app.AnalysisService
	navigator *app.Navigator
	logger    *internal.Logger
}

// NewServer creates a server with all routes registered. An empty mode keeps
// gin's current mode.
func NewServer(analysis *app.AnalysisService, navigator *app.Navigator, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:    router,
		analysis:  analysis,
		navigator: navigator,
		logger:    internal.DefaultLogger.With("API"),
	}
	s.router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/analysis", s.handleAnalysis)
		api.GET("/breadcrumbs", s.handleBreadcrumbs)
		api.GET("/report", s.handleReport)

		drillGroup := api.Group("/drill")
		{
			drillGroup.POST("/down", s.handleDrillDown)
			drillGroup.POST("/up", s.handleDrillUp)
			drillGroup.POST("/to/:id", s.handleDrillTo)
			drillGroup.DELETE("", s.handleClear)
		}

		api.POST("/highlight", s.handleSetHighlight)
		api.DELETE("/highlight", s.handleClearHighlight)

		sessions := api.Group("/sessions")
		{
			sessions.GET("", s.handleListSessions)
			sessions.POST("", s.handleSaveSession)
			sessions.POST("/:id", s.handleSaveSession)
			sessions.GET("/:id", s.handleLoadSession)
			sessions.DELETE("/:id", s.handleDeleteSession)
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Start runs the server until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting SPC analysis server on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
