package job

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		configKeys []string
		settings   store.Settings
		in         RunOptions
		want       RunOptions
		wantErr    error
	}{
		{
			name:    "no key anywhere",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:     "settings key",
			settings: store.Settings{GeminiAPIKey: "settings-key", CustomPrompt: "p"},
			want:     RunOptions{GeminiAPIKey: "settings-key", Prompt: "p"},
		},
		{
			name:     "request key wins",
			settings: store.Settings{GeminiAPIKey: "settings-key", WhisperAPIKey: "sw"},
			in:       RunOptions{GeminiAPIKey: "req", WhisperAPIKey: "rw", Prompt: "rp"},
			want:     RunOptions{GeminiAPIKey: "req", WhisperAPIKey: "rw", Prompt: "rp"},
		},
		{
			name:       "config keys only",
			configKeys: []string{"cfg"},
			settings:   store.Settings{WhisperAPIKey: "sw"},
			want:       RunOptions{WhisperAPIKey: "sw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.configKeys...)
			env.history.settings = tt.settings

			got, err := env.pipeline.Resolve(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveWhisperFromConfig(t *testing.T) {
	env := newTestEnv(t, "cfg")
	env.pipeline.whisperKey = "cfg-whisper"

	got, err := env.pipeline.Resolve(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.WhisperAPIKey != "cfg-whisper" {
		t.Errorf("WhisperAPIKey = %q", got.WhisperAPIKey)
	}
}

func TestPipelineRunUpload(t *testing.T) {
	env := newTestEnv(t, "key")
	env.summarizer.statuses = []string{"Rate limited. Retrying in 1s (1/3)..."}
	in := env.video(t, "lecture.mp4")
	j := FromInput(in)

	var progress []int
	var messages []string
	got, err := env.pipeline.Run(context.Background(), j, RunOptions{WhisperAPIKey: "sk", Prompt: "prompt"}, func(s Job) {
		if len(progress) == 0 || progress[len(progress)-1] != s.Progress {
			progress = append(progress, s.Progress)
		}
		messages = append(messages, s.StatusMessage)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{10, 20, 40, 60, 80, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress = %v, want %v", progress, want)
		}
	}

	if got.Status != StatusCompleted || got.Summary != "# Summary of audio:lecture.mp4" {
		t.Errorf("job = %+v", got)
	}
	if got.Transcript != "- **[00:00]** hello\n" {
		t.Errorf("Transcript = %q", got.Transcript)
	}
	if got.AudioPath == "" {
		t.Error("AudioPath should be kept for download")
	}
	if got.HistoryID != "h0" {
		t.Errorf("HistoryID = %q", got.HistoryID)
	}

	found := false
	for _, m := range messages {
		if strings.HasPrefix(m, "Rate limited") {
			found = true
		}
	}
	if !found {
		t.Errorf("retry status not reported: %v", messages)
	}

	req := env.summarizer.requests[0]
	if req.Prompt != "prompt" || req.MIMEType != "audio/mp3" {
		t.Errorf("summarizer request = %+v", req)
	}

	items := env.history.list()
	if len(items) != 1 || items[0].Filename != "lecture.mp4" || items[0].Transcript == "" {
		t.Errorf("history = %+v", items)
	}
}

func TestPipelineSkipsTranscriptWithoutKey(t *testing.T) {
	env := newTestEnv(t, "key")
	j := FromInput(env.video(t, "a.mp4"))

	got, err := env.pipeline.Run(context.Background(), j, RunOptions{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if env.transcriber.calls.Load() != 0 {
		t.Error("transcriber must not run without a key")
	}
	if got.Transcript != "" {
		t.Errorf("Transcript = %q", got.Transcript)
	}
}

func TestPipelineTranscriptFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t, "key")
	env.transcriber.err = errors.New("whisper down")
	j := FromInput(env.video(t, "a.mp4"))

	got, err := env.pipeline.Run(context.Background(), j, RunOptions{WhisperAPIKey: "sk"}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Status != StatusCompleted || got.Transcript != "" {
		t.Errorf("job = %+v", got)
	}
}

func TestPipelineYouTube(t *testing.T) {
	env := newTestEnv(t, "key")
	env.fetcher.audio = youtube.Audio{Title: "Intro", Duration: 90, MIMEType: "audio/webm", Data: []byte("yt")}
	j := FromInput(Input{Source: SourceYouTube, YouTubeURL: "https://youtu.be/abc"})

	if j.Filename != "https://youtu.be/abc" {
		t.Errorf("placeholder filename = %q", j.Filename)
	}

	got, err := env.pipeline.Run(context.Background(), j, RunOptions{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Filename != "Intro" || got.Size != 2 {
		t.Errorf("job = %+v", got)
	}
	if env.summarizer.requests[0].MIMEType != "audio/webm" {
		t.Errorf("MIMEType = %q", env.summarizer.requests[0].MIMEType)
	}

	items := env.history.list()
	if len(items) != 1 || items[0].Filename != "[YouTube] Intro" || items[0].YouTubeURL != "https://youtu.be/abc" {
		t.Errorf("history = %+v", items)
	}
}

func TestPipelineFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *testEnv)
		input   func(t *testing.T, env *testEnv) Input
		wantMsg string
	}{
		{
			name:    "extract error",
			setup:   func(env *testEnv) { env.extractor.err = errors.New("ffmpeg exploded") },
			input:   func(t *testing.T, env *testEnv) Input { return env.video(t, "a.mp4") },
			wantMsg: "ffmpeg exploded",
		},
		{
			name:    "summarize error",
			setup:   func(env *testEnv) { env.summarizer.setFailure("audio:a.mp4", errors.New("400 bad request")) },
			input:   func(t *testing.T, env *testEnv) Input { return env.video(t, "a.mp4") },
			wantMsg: "400 bad request",
		},
		{
			name:  "youtube error",
			setup: func(env *testEnv) { env.fetcher.err = youtube.ErrTooLong },
			input: func(t *testing.T, env *testEnv) Input {
				return Input{Source: SourceYouTube, YouTubeURL: "https://youtu.be/x"}
			},
			wantMsg: youtube.ErrTooLong.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "key")
			tt.setup(env)

			got, err := env.pipeline.Run(context.Background(), FromInput(tt.input(t, env)), RunOptions{}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got.Status != StatusError || !strings.Contains(got.Error, tt.wantMsg) {
				t.Errorf("job = %+v", got)
			}
			if got.FinishedAt.IsZero() {
				t.Error("FinishedAt should be set")
			}
			if len(env.history.list()) != 0 {
				t.Error("failed jobs must not be saved to history")
			}
		})
	}
}

func TestPipelineHistoryFailureKeepsJob(t *testing.T) {
	env := newTestEnv(t, "key")
	env.history.err = errors.New("disk full")

	got, err := env.pipeline.Run(context.Background(), FromInput(env.video(t, "a.mp4")), RunOptions{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Status != StatusCompleted || got.HistoryID != "" {
		t.Errorf("job = %+v", got)
	}
}

func TestAudioFilename(t *testing.T) {
	tests := map[string]string{
		"audio/mp3":  "audio.mp3",
		"audio/webm": "audio.webm",
		"audio/mp4":  "audio.m4a",
		"":           "audio.mp3",
	}
	for mime, want := range tests {
		if got := audioFilename(mime); got != want {
			t.Errorf("audioFilename(%q) = %q, want %q", mime, got, want)
		}
	}
}
