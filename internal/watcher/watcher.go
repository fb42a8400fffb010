package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
)

var supportedFormats = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

type implWatcher struct {
	inputDir    string
	handler     EventHandler
	logger      logger.Logger
	watcher     *fsnotify.Watcher
	settleDelay time.Duration
	wg          sync.WaitGroup
}

// Start blocks, handing every new video in the inbox to the handler.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s", w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(supportedFormats, ", "))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isVideoFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-video file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New video detected: %s", event.Name)
			w.wg.Add(1)
			go func(filePath string) {
				defer w.wg.Done()

				// Give the copy a moment to finish before reading the file.
				select {
				case <-time.After(w.settleDelay):
				case <-ctx.Done():
					return
				}

				if err := w.handler(ctx, filePath); err != nil {
					w.logger.Error(ctx, "Failed to enqueue %s: %v", filePath, err)
				}
			}(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// isVideoFile checks if the file has a supported video extension
func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// SubmitTo returns a handler that starts an inbox job for each file.
// The manager bounds how many run at once.
func SubmitTo(m job.Manager) EventHandler {
	return func(ctx context.Context, filePath string) error {
		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat inbox file: %w", err)
		}

		_, err = m.Submit(ctx, job.Input{
			Filename: filepath.Base(filePath),
			Size:     info.Size(),
			Path:     filePath,
			Source:   job.SourceInbox,
		}, job.RunOptions{})
		return err
	}
}
