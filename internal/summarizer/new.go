package summarizer

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
)

type implSummarizer struct {
	api           geminiAPI
	apiKeys       []string
	currentKey    int
	keyMu         sync.Mutex
	model         string
	maxRetries    int
	retryDelay    time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
	inlineLimitMB float64
	pollInterval  time.Duration
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// New creates a Summarizer that rotates through the configured Gemini API keys.
func New(cfg config.GeminiConfig, log logger.Logger, m *metrics.Metrics) Summarizer {
	return newWithAPI(newGenaiBackend(""), cfg, log, m)
}

func newWithAPI(api geminiAPI, cfg config.GeminiConfig, log logger.Logger, m *metrics.Metrics) *implSummarizer {
	return &implSummarizer{
		api:           api,
		apiKeys:       cfg.APIKeys,
		model:         cfg.Model,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    time.Second,
		inlineLimitMB: cfg.InlineLimitMB,
		pollInterval:  cfg.PollInterval,
		logger:        log,
		metrics:       m,
	}
}
