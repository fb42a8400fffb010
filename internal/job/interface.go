package job

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/lecture-digest/internal/store"
)

var (
	ErrMissingAPIKey  = errors.New("gemini api key is not configured")
	ErrNotFound       = errors.New("job not found")
	ErrAlreadyRunning = errors.New("a batch is already running")
	ErrNotRetryable   = errors.New("only failed jobs can be retried")
	ErrBusy           = errors.New("jobs are still processing")
)

// Manager holds the batch queue and runs jobs with bounded concurrency.
type Manager interface {
	// Add creates waiting jobs.
	Add(inputs ...Input) []Job
	// StartAll processes every waiting job in the background, at most
	// max_concurrent at a time. It returns the number of jobs started.
	StartAll(ctx context.Context, opts RunOptions) (int, error)
	// Submit adds one job and starts it right away.
	Submit(ctx context.Context, in Input, opts RunOptions) (Job, error)
	// Retry resets a failed job to waiting and processes it again.
	Retry(ctx context.Context, id string, opts RunOptions) error
	// Clear drops every job and its temp files.
	Clear() error
	List() []Job
	Get(id string) (Job, error)
	Counts() Counts
	// Subscribe streams job snapshots until cancel is called.
	Subscribe() (updates <-chan Job, cancel func())
	// Wait blocks until all started work is done.
	Wait()
}

// HistoryStore is the part of the store the pipeline writes to.
type HistoryStore interface {
	AddHistory(ctx context.Context, item store.HistoryItem) (store.HistoryItem, error)
	Settings(ctx context.Context) (store.Settings, error)
}
