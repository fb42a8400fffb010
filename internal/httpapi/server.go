package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.handleIndex)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	api := r.Group("/api")
	api.POST("/extract-audio", s.handleExtractAudio)
	api.POST("/gemini-file", s.handleGeminiFile)
	api.POST("/whisper", s.handleWhisper)
	api.POST("/youtube", s.handleYouTube)
	api.POST("/youtube/summarize", s.handleYouTubeSummarize)
	api.GET("/models", s.handleModels)

	jobs := api.Group("/jobs")
	jobs.GET("", s.handleListJobs)
	jobs.POST("", s.handleAddJobs)
	jobs.DELETE("", s.handleClearJobs)
	jobs.POST("/start", s.handleStartJobs)
	jobs.GET("/ws", s.handleJobsWS)
	jobs.GET("/summaries.md", s.handleJobsBundle)
	jobs.GET("/:id", s.handleGetJob)
	jobs.POST("/:id/retry", s.handleRetryJob)
	jobs.GET("/:id/summary.md", s.handleJobSummary)
	jobs.GET("/:id/audio.mp3", s.handleJobAudio)

	history := api.Group("/history")
	history.GET("", s.handleListHistory)
	history.DELETE("", s.handleClearHistory)
	history.GET("/export.md", s.handleExportHistory)
	history.GET("/:id", s.handleGetHistory)
	history.DELETE("/:id", s.handleDeleteHistory)

	api.POST("/export/:format", s.handleExport)

	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handleUpdateSettings)
	api.POST("/settings/prompt/reset", s.handleResetPrompt)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.jobCtx = ctx

	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			s.logger.Error(ctx, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		s.logger.Debug(ctx, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
