package media

import (
	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
	"github.com/nguyentantai21042004/lecture-digest/pkg/executor"
)

type implExtractor struct {
	cfg           config.FFmpegConfig
	tempDir       string
	inlineLimitMB float64
	executor      executor.Executor
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// New creates an Extractor backed by ffmpeg/ffprobe.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, m *metrics.Metrics) Extractor {
	return &implExtractor{
		cfg:           cfg.FFmpeg,
		tempDir:       cfg.Paths.Temp,
		inlineLimitMB: cfg.Gemini.InlineLimitMB,
		executor:      exec,
		logger:        log,
		metrics:       m,
	}
}
