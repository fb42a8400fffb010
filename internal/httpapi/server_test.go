package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

type fakeExtractor struct {
	dir string
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string) (media.Result, error) {
	out := filepath.Join(f.dir, filepath.Base(videoPath)+".mp3")
	if err := os.WriteFile(out, []byte("mp3"), 0644); err != nil {
		return media.Result{}, err
	}
	return media.Result{AudioPath: out, MIMEType: "audio/mp3"}, nil
}

func (f *fakeExtractor) ExtractBytes(ctx context.Context, filename string, data []byte) (media.Result, []byte, error) {
	return media.Result{
		MIMEType:         "audio/mp3",
		OriginalSize:     int64(len(data)),
		CompressedSize:   3,
		CompressionRatio: "50.0",
		Duration:         12.5,
		SizeMB:           "0.00",
	}, []byte("mp3"), nil
}

func (f *fakeExtractor) Duration(ctx context.Context, path string) (float64, error) {
	return 0, nil
}

type fakeSummarizer struct {
	mu       sync.Mutex
	requests []summarizer.Request
	err      error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summarizer.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "# Summary", nil
}

func (f *fakeSummarizer) AvailableModels(ctx context.Context, apiKey string) ([]string, error) {
	if apiKey == "" {
		return nil, summarizer.ErrMissingAPIKey
	}
	return []string{"gemini-2.0-flash-exp"}, nil
}

func (f *fakeSummarizer) last() summarizer.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeTranscriber struct {
	lastKey string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcriber.Request) (transcriber.Transcript, error) {
	f.lastKey = req.APIKey
	if req.APIKey == "" {
		return transcriber.Transcript{}, transcriber.ErrMissingAPIKey
	}
	return transcriber.Transcript{
		Text:     "hello world",
		Segments: []transcriber.Segment{{Start: 0, End: 1.5, Text: "hello world"}},
		Duration: 1.5,
	}, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, url string) (youtube.Audio, error) {
	return youtube.Audio{Title: "Intro Lecture", Duration: 300, MIMEType: "audio/webm", Data: []byte("webm")}, nil
}

type testServer struct {
	*Server
	cfg        *config.Config
	store      *store.Store
	summarizer *fakeSummarizer
	jobs       job.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Paths.Data = dir
	cfg.Paths.Temp = filepath.Join(dir, "temp")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	log := logger.Discard()
	st, err := store.Open(context.Background(), store.Options{
		Path:          filepath.Join(dir, "digest.db"),
		DefaultPrompt: "default prompt",
	}, log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sum := &fakeSummarizer{}
	deps := job.Deps{
		Extractor:   &fakeExtractor{dir: dir},
		Summarizer:  sum,
		Transcriber: &fakeTranscriber{},
		Fetcher:     fakeFetcher{},
		History:     st,
	}
	pipeline := job.NewPipeline(cfg, deps, log)
	jobs := job.NewManager(pipeline, 3, log)
	t.Cleanup(jobs.Wait)

	srv := New(cfg, Deps{
		Extractor:   deps.Extractor,
		Summarizer:  sum,
		Transcriber: deps.Transcriber,
		Fetcher:     deps.Fetcher,
		Store:       st,
		Pipeline:    pipeline,
		Jobs:        jobs,
		Metrics:     metrics.New(),
	}, log)

	return &testServer{Server: srv, cfg: cfg, store: st, summarizer: sum, jobs: jobs}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == nil {
		r = httptest.NewRequest(method, path, nil)
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = httptest.NewRequest(method, path, bytes.NewReader(data))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, r)
	return w
}

func (ts *testServer) saveGeminiKey(t *testing.T, key string) {
	t.Helper()
	if _, err := ts.store.UpdateSettings(context.Background(), store.SettingsUpdate{GeminiAPIKey: &key}); err != nil {
		t.Fatalf("save key: %v", err)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealthAndIndex(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || decode(t, w)["status"] != "ok" {
		t.Errorf("healthz = %d %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Lecture Digest") {
		t.Errorf("index = %d", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", w.Code)
	}
}

func TestExtractAudio(t *testing.T) {
	ts := newTestServer(t)

	body, ct := multipartBody(t, "file", map[string]string{"lecture.mp4": "videodata"})
	r := httptest.NewRequest(http.MethodPost, "/api/extract-audio", body)
	r.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["success"] != true || got["audio"] != base64.StdEncoding.EncodeToString([]byte("mp3")) {
		t.Errorf("response = %v", got)
	}
	if got["mimeType"] != "audio/mp3" || got["compressionRatio"] != "50.0" || got["originalSize"] != float64(9) {
		t.Errorf("response = %v", got)
	}
	if _, ok := got["needsFileAPI"]; !ok {
		t.Error("needsFileAPI missing")
	}

	w = ts.do(t, http.MethodPost, "/api/extract-audio", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", w.Code)
	}
}

func TestGeminiFile(t *testing.T) {
	ts := newTestServer(t)
	ts.saveGeminiKey(t, "saved-key")

	w := ts.do(t, http.MethodPost, "/api/gemini-file", map[string]string{
		"audio":    base64.StdEncoding.EncodeToString([]byte("abc")),
		"mimeType": "audio/mp3",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := decode(t, w); got["summary"] != "# Summary" || got["success"] != true {
		t.Errorf("response = %v", got)
	}

	req := ts.summarizer.last()
	if !req.UseFileAPI || req.APIKey != "saved-key" || req.Prompt != "default prompt" || string(req.Audio) != "abc" {
		t.Errorf("summarizer request = %+v", req)
	}

	w = ts.do(t, http.MethodPost, "/api/gemini-file", map[string]string{"audio": "%%%", "apiKey": "k"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad base64 status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/gemini-file", map[string]string{"apiKey": "k"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing audio status = %d", w.Code)
	}
}

func TestGeminiFileUpstreamError(t *testing.T) {
	ts := newTestServer(t)
	ts.summarizer.err = errors.New("generate content: 500 internal")

	w := ts.do(t, http.MethodPost, "/api/gemini-file", map[string]string{
		"audio":  base64.StdEncoding.EncodeToString([]byte("abc")),
		"apiKey": "k",
	})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(decode(t, w)["error"].(string), "500 internal") {
		t.Errorf("error body = %s", w.Body.String())
	}
}

func TestWhisper(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/whisper", map[string]string{
		"audio":  base64.StdEncoding.EncodeToString([]byte("abc")),
		"apiKey": "sk-test",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["transcript"] != "hello world" || got["duration"] != 1.5 {
		t.Errorf("response = %v", got)
	}
	if segs, ok := got["segments"].([]any); !ok || len(segs) != 1 {
		t.Errorf("segments = %v", got["segments"])
	}

	w = ts.do(t, http.MethodPost, "/api/whisper", map[string]string{
		"audio": base64.StdEncoding.EncodeToString([]byte("abc")),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing key status = %d", w.Code)
	}
}

func TestYouTube(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing", "", http.StatusBadRequest},
		{"invalid", "https://example.com/video", http.StatusBadRequest},
		{"valid", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/youtube", map[string]string{"url": tt.url})
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusOK {
				got := decode(t, w)
				if got["title"] != "Intro Lecture" || got["mimeType"] != "audio/webm" || got["duration"] != float64(300) {
					t.Errorf("response = %v", got)
				}
			}
		})
	}
}

func TestYouTubeSummarize(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/youtube/summarize", map[string]string{"url": "https://youtu.be/dQw4w9WgXcQ"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("no key status = %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/youtube/summarize", map[string]string{
		"url":    "https://youtu.be/dQw4w9WgXcQ",
		"apiKey": "k",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["title"] != "Intro Lecture" || got["summary"] != "# Summary" || got["historyId"] == "" {
		t.Errorf("response = %v", got)
	}

	items, err := ts.store.ListHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Filename != "[YouTube] Intro Lecture" || items[0].YouTubeURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("history = %+v", items)
	}
}

func TestModels(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/models", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no key status = %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	r.Header.Set(apiKeyHeader, "k")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, r)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "gemini-2.0-flash-exp") {
		t.Errorf("models = %d %s", rec.Code, rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{badRequest("x"), http.StatusBadRequest},
		{youtube.ErrTooLong, http.StatusBadRequest},
		{job.ErrMissingAPIKey, http.StatusBadRequest},
		{store.ErrNotFound, http.StatusNotFound},
		{job.ErrNotFound, http.StatusNotFound},
		{job.ErrAlreadyRunning, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{media.ErrFFmpegMissing, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
