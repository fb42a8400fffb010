package job

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

func (m *implManager) Add(inputs ...Input) []Job {
	m.mu.Lock()
	added := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		j := FromInput(in)
		m.jobs[j.ID] = &j
		m.order = append(m.order, j.ID)
		added = append(added, j)
	}
	m.mu.Unlock()

	for _, j := range added {
		m.broadcast(j)
	}
	return added
}

// FromInput builds a waiting job with a fresh ID.
func FromInput(in Input) Job {
	source := in.Source
	if source == "" {
		source = SourceUpload
	}
	name := in.Filename
	if name == "" {
		name = in.YouTubeURL
	}

	now := time.Now()
	return Job{
		ID:         uuid.NewString(),
		Filename:   name,
		Size:       in.Size,
		Source:     source,
		YouTubeURL: in.YouTubeURL,
		Status:     StatusWaiting,
		VideoPath:  in.Path,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (m *implManager) StartAll(ctx context.Context, opts RunOptions) (int, error) {
	opts, err := m.pipeline.Resolve(ctx, opts)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return 0, ErrAlreadyRunning
	}
	var ids []string
	for _, id := range m.order {
		if m.jobs[id].Status == StatusWaiting {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		m.mu.Unlock()
		return 0, nil
	}
	m.running = true
	m.mu.Unlock()

	m.logger.Info(ctx, "Starting batch of %d jobs", len(ids))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runBatch(ctx, ids, opts)

		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	return len(ids), nil
}

// runBatch keeps at most cap(m.slots) jobs in flight. Jobs left when ctx is
// cancelled stay waiting.
func (m *implManager) runBatch(ctx context.Context, ids []string, opts RunOptions) {
	var wg sync.WaitGroup
	for _, id := range ids {
		if err := m.slots.take(ctx); err != nil {
			m.logger.Warn(ctx, "Batch interrupted: %v", err)
			break
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer m.slots.free()
			m.process(ctx, id, opts)
		}(id)
	}
	wg.Wait()
}

func (m *implManager) Submit(ctx context.Context, in Input, opts RunOptions) (Job, error) {
	opts, err := m.pipeline.Resolve(ctx, opts)
	if err != nil {
		return Job{}, err
	}

	j := m.Add(in)[0]
	m.runOne(ctx, j.ID, opts)
	return j, nil
}

func (m *implManager) Retry(ctx context.Context, id string, opts RunOptions) error {
	opts, err := m.pipeline.Resolve(ctx, opts)
	if err != nil {
		return err
	}

	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if j.Status != StatusError {
		m.mu.Unlock()
		return ErrNotRetryable
	}
	j.Status = StatusWaiting
	j.Progress = 0
	j.Error = ""
	j.StatusMessage = ""
	j.FinishedAt = time.Time{}
	j.UpdatedAt = time.Now()
	snapshot := *j
	m.mu.Unlock()

	m.broadcast(snapshot)
	m.runOne(ctx, id, opts)
	return nil
}

func (m *implManager) runOne(ctx context.Context, id string, opts RunOptions) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.slots.take(ctx); err != nil {
			return
		}
		defer m.slots.free()
		m.process(ctx, id, opts)
	}()
}

// process claims a waiting job and runs it. A job already claimed by another
// Submit, Retry or StartAll is skipped.
func (m *implManager) process(ctx context.Context, id string, opts RunOptions) {
	m.mu.Lock()
	cur, ok := m.jobs[id]
	if !ok || cur.Status != StatusWaiting {
		m.mu.Unlock()
		return
	}
	cur.Status = StatusProcessing
	cur.UpdatedAt = time.Now()
	j := *cur
	m.mu.Unlock()

	m.broadcast(j)
	m.pipeline.Run(ctx, j, opts, m.apply)
}

// apply stores a pipeline snapshot and fans it out.
func (m *implManager) apply(j Job) {
	m.mu.Lock()
	cur, ok := m.jobs[j.ID]
	if ok {
		*cur = j
	}
	m.mu.Unlock()

	if ok {
		m.broadcast(j)
	}
}

func (m *implManager) Clear() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrBusy
	}
	for _, j := range m.jobs {
		if j.Status == StatusProcessing {
			m.mu.Unlock()
			return ErrBusy
		}
	}
	jobs := m.jobs
	m.jobs = make(map[string]*Job)
	m.order = nil
	m.mu.Unlock()

	ctx := context.Background()
	for _, j := range jobs {
		// Inbox videos belong to the user; only uploads were written by us.
		if j.Source == SourceUpload {
			m.removeFile(ctx, j.VideoPath)
		}
		m.removeFile(ctx, j.AudioPath)
	}
	return nil
}

func (m *implManager) removeFile(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	} else {
		m.logger.Debug(ctx, "Cleaned up temp file: %s", path)
	}
}

func (m *implManager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Job, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.jobs[id])
	}
	return out
}

func (m *implManager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

func (m *implManager) Counts() Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := Counts{Total: len(m.jobs)}
	for _, j := range m.jobs {
		switch j.Status {
		case StatusCompleted:
			c.Completed++
		case StatusError:
			c.Error++
		}
	}
	return c
}

func (m *implManager) Subscribe() (<-chan Job, func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Job, subscriberBuffer)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcast never blocks; slow subscribers miss intermediate snapshots.
func (m *implManager) broadcast(j Job) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- j:
		default:
		}
	}
}

func (m *implManager) Wait() {
	m.wg.Wait()
}
