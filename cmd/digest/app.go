package main

import (
	"context"
	"fmt"
	"io"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
	"github.com/nguyentantai21042004/lecture-digest/pkg/executor"
)

// app wires every service from one config.
type app struct {
	cfg         *config.Config
	log         logger.Logger
	metrics     *metrics.Metrics
	store       *store.Store
	extractor   media.Extractor
	summarizer  summarizer.Summarizer
	transcriber transcriber.Transcriber
	fetcher     youtube.Fetcher
	pipeline    *job.Pipeline
	jobs        job.Manager
}

func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, logOut)
	m := metrics.New()

	st, err := store.Open(ctx, store.Options{
		Path:          cfg.DatabasePath(),
		MaxItems:      cfg.History.MaxItems,
		DefaultPrompt: summarizer.DefaultPrompt,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{
		cfg:         cfg,
		log:         log,
		metrics:     m,
		store:       st,
		extractor:   media.New(cfg, executor.New(), log, m),
		summarizer:  summarizer.New(cfg.Gemini, log, m),
		transcriber: transcriber.New(cfg.Whisper, log, m),
		fetcher:     youtube.New(cfg.YouTube.MaxDuration, log),
	}

	a.pipeline = job.NewPipeline(cfg, job.Deps{
		Extractor:   a.extractor,
		Summarizer:  a.summarizer,
		Transcriber: a.transcriber,
		Fetcher:     a.fetcher,
		History:     st,
		Metrics:     m,
	}, log)
	a.jobs = job.NewManager(a.pipeline, cfg.Performance.MaxConcurrent, log)

	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
