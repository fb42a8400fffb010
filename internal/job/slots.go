package job

import "context"

// slots caps how many jobs run the pipeline at once. Batch runs, inbox
// submissions and retries all draw from the same pool.
type slots chan struct{}

func newSlots(n int) slots {
	if n <= 0 {
		n = 1
	}
	return make(slots, n)
}

// take waits for a free slot. It gives up when ctx is done, leaving the job
// waiting.
func (s slots) take(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s slots) free() { <-s }

func (s slots) inUse() int { return len(s) }
