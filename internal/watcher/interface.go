package watcher

import "context"

// Watcher monitors the inbox folder for new videos
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once for every new video file
type EventHandler func(ctx context.Context, filePath string) error
