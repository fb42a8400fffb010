package transcriber

import (
	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
)

type implTranscriber struct {
	apiKey   string
	model    string
	language string
	baseURL  string
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// New creates a Whisper transcriber backed by the OpenAI API.
func New(cfg config.WhisperConfig, log logger.Logger, m *metrics.Metrics) Transcriber {
	return &implTranscriber{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
		logger:   log,
		metrics:  m,
	}
}
