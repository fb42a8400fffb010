package youtube

import (
	"context"
	"io"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
)

// videoClient is the subset of *yt.Client used here.
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

type implFetcher struct {
	client      videoClient
	maxDuration time.Duration
	logger      logger.Logger
}

// New creates a Fetcher rejecting videos longer than maxDuration.
func New(maxDuration time.Duration, log logger.Logger) Fetcher {
	return &implFetcher{
		client:      &yt.Client{},
		maxDuration: maxDuration,
		logger:      log,
	}
}
