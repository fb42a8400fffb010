package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var (
	errRateLimited = errors.New("429 Resource has been exhausted")
	errBadRequest  = errors.New("400 invalid argument")
)

func recordSleeps(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
		wantWaits []time.Duration
	}{
		{
			name:      "success first try",
			wantCalls: 1,
		},
		{
			name:      "retryable then success",
			failures:  []error{errRateLimited, errRateLimited},
			wantCalls: 3,
			wantWaits: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:      "exhausted returns last error",
			failures:  []error{errRateLimited, errRateLimited, errRateLimited},
			wantCalls: 3,
			wantErr:   errRateLimited,
			wantWaits: []time.Duration{time.Second, 2 * time.Second},
		},
		{
			name:      "non retryable fails fast",
			failures:  []error{errBadRequest},
			wantCalls: 1,
			wantErr:   errBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var waits []time.Duration
			var retried []int
			calls := 0

			p := Policy{
				MaxAttempts:  3,
				InitialDelay: time.Second,
				Factor:       2,
				Retryable:    func(err error) bool { return errors.Is(err, errRateLimited) },
				OnRetry:      func(attempt int, _ time.Duration) { retried = append(retried, attempt) },
				Sleep:        recordSleeps(&waits),
			}

			got, err := Do(context.Background(), p, func(ctx context.Context) (string, error) {
				calls++
				if calls <= len(tt.failures) {
					return "", tt.failures[calls-1]
				}
				return "ok", nil
			})

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != "ok" {
				t.Errorf("Do() = %q, want ok", got)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if len(waits) != len(tt.wantWaits) {
				t.Fatalf("waits = %v, want %v", waits, tt.wantWaits)
			}
			for i := range waits {
				if waits[i] != tt.wantWaits[i] {
					t.Errorf("wait[%d] = %v, want %v", i, waits[i], tt.wantWaits[i])
				}
				if retried[i] != i+1 {
					t.Errorf("OnRetry attempt[%d] = %d, want %d", i, retried[i], i+1)
				}
			}
		})
	}
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 3}, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times on cancelled context", calls)
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() = %v, want context.Canceled", err)
	}
}
