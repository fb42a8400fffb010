package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

type fakeExtractor struct {
	dir string
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string) (media.Result, error) {
	if f.err != nil {
		return media.Result{}, f.err
	}
	out := filepath.Join(f.dir, filepath.Base(videoPath)+".mp3")
	if err := os.WriteFile(out, []byte("audio:"+filepath.Base(videoPath)), 0644); err != nil {
		return media.Result{}, err
	}
	return media.Result{AudioPath: out, MIMEType: "audio/mp3"}, nil
}

func (f *fakeExtractor) ExtractBytes(ctx context.Context, filename string, data []byte) (media.Result, []byte, error) {
	return media.Result{}, nil, errors.New("not used")
}

func (f *fakeExtractor) Duration(ctx context.Context, path string) (float64, error) {
	return 0, nil
}

type fakeSummarizer struct {
	mu       sync.Mutex
	requests []summarizer.Request
	failFor  map[string]error // keyed by audio content
	gate     chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	statuses []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summarizer.Request) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	err := f.failFor[string(req.Audio)]
	statuses := f.statuses
	f.mu.Unlock()

	for _, s := range statuses {
		req.OnStatus(s)
	}

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err != nil {
		return "", err
	}
	return "# Summary of " + string(req.Audio), nil
}

func (f *fakeSummarizer) AvailableModels(ctx context.Context, apiKey string) ([]string, error) {
	return nil, nil
}

func (f *fakeSummarizer) setFailure(audio string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor == nil {
		f.failFor = map[string]error{}
	}
	if err == nil {
		delete(f.failFor, audio)
		return
	}
	f.failFor[audio] = err
}

type fakeTranscriber struct {
	err   error
	calls atomic.Int32
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcriber.Request) (transcriber.Transcript, error) {
	f.calls.Add(1)
	if f.err != nil {
		return transcriber.Transcript{}, f.err
	}
	return transcriber.Transcript{
		Text:     "hello",
		Segments: []transcriber.Segment{{Start: 0, End: 1, Text: "hello"}},
	}, nil
}

type fakeFetcher struct {
	audio youtube.Audio
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (youtube.Audio, error) {
	return f.audio, f.err
}

type fakeHistory struct {
	mu       sync.Mutex
	items    []store.HistoryItem
	settings store.Settings
	err      error
}

func (f *fakeHistory) AddHistory(ctx context.Context, item store.HistoryItem) (store.HistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.HistoryItem{}, f.err
	}
	item.ID = "h" + string(rune('0'+len(f.items)))
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeHistory) Settings(ctx context.Context) (store.Settings, error) {
	return f.settings, nil
}

func (f *fakeHistory) list() []store.HistoryItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.HistoryItem(nil), f.items...)
}

type testEnv struct {
	cfg         *config.Config
	dir         string
	extractor   *fakeExtractor
	summarizer  *fakeSummarizer
	transcriber *fakeTranscriber
	fetcher     *fakeFetcher
	history     *fakeHistory
	pipeline    *Pipeline
}

func newTestEnv(t *testing.T, geminiKeys ...string) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Gemini.APIKeys = geminiKeys

	env := &testEnv{
		cfg:         cfg,
		dir:         dir,
		extractor:   &fakeExtractor{dir: dir},
		summarizer:  &fakeSummarizer{},
		transcriber: &fakeTranscriber{},
		fetcher:     &fakeFetcher{},
		history:     &fakeHistory{settings: store.Settings{CustomPrompt: "saved prompt"}},
	}
	env.pipeline = NewPipeline(cfg, Deps{
		Extractor:   env.extractor,
		Summarizer:  env.summarizer,
		Transcriber: env.transcriber,
		Fetcher:     env.fetcher,
		History:     env.history,
	}, logger.Discard())
	return env
}

// video creates an input file in the env temp dir.
func (e *testEnv) video(t *testing.T, name string) Input {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return Input{Filename: name, Size: 5, Path: path}
}

// callsFor counts Summarize calls that carried the given audio.
func (f *fakeSummarizer) callsFor(audio string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if string(r.Audio) == audio {
			n++
		}
	}
	return n
}
