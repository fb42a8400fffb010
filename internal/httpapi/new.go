// Package httpapi serves the dashboard and its JSON API.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

// Store is the history and settings API the handlers use.
type Store interface {
	ListHistory(ctx context.Context) ([]store.HistoryItem, error)
	GetHistory(ctx context.Context, id string) (store.HistoryItem, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	Settings(ctx context.Context) (store.Settings, error)
	UpdateSettings(ctx context.Context, u store.SettingsUpdate) (store.Settings, error)
	Prompt(ctx context.Context) (string, error)
	ResetPrompt(ctx context.Context) (string, error)
}

// Deps are the services behind the API.
type Deps struct {
	Extractor   media.Extractor
	Summarizer  summarizer.Summarizer
	Transcriber transcriber.Transcriber
	Fetcher     youtube.Fetcher
	Store       Store
	Pipeline    *job.Pipeline
	Jobs        job.Manager
	Metrics     *metrics.Metrics
}

type Server struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
	engine *gin.Engine

	// jobCtx outlives requests; batch runs started over HTTP use it.
	jobCtx context.Context
}

func New(cfg *config.Config, deps Deps, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: log,
		jobCtx: context.Background(),
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.MaxMultipartMemory = 32 << 20
	s.routes()
	return s
}
