package job

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/lecture-digest/internal/config"
	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/metrics"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

// Deps are the services a Pipeline drives. Transcriber and Fetcher may be nil.
type Deps struct {
	Extractor   media.Extractor
	Summarizer  summarizer.Summarizer
	Transcriber transcriber.Transcriber
	Fetcher     youtube.Fetcher
	History     HistoryStore
	Metrics     *metrics.Metrics
}

// Pipeline runs a single job from video (or URL) to saved summary.
type Pipeline struct {
	deps       Deps
	geminiKeys []string
	whisperKey string
	logger     logger.Logger
}

func NewPipeline(cfg *config.Config, deps Deps, log logger.Logger) *Pipeline {
	return &Pipeline{
		deps:       deps,
		geminiKeys: cfg.Gemini.APIKeys,
		whisperKey: cfg.Whisper.APIKey,
		logger:     log,
	}
}

// Resolve fills empty options from saved settings, then config. It fails with
// ErrMissingAPIKey when no Gemini key is available anywhere.
func (p *Pipeline) Resolve(ctx context.Context, opts RunOptions) (RunOptions, error) {
	var settings store.Settings
	if p.deps.History != nil {
		s, err := p.deps.History.Settings(ctx)
		if err != nil {
			p.logger.Warn(ctx, "Failed to read settings: %v", err)
		}
		settings = s
	}

	if opts.GeminiAPIKey == "" {
		opts.GeminiAPIKey = settings.GeminiAPIKey
	}
	if opts.GeminiAPIKey == "" && len(p.geminiKeys) == 0 {
		return RunOptions{}, ErrMissingAPIKey
	}

	if opts.WhisperAPIKey == "" {
		opts.WhisperAPIKey = settings.WhisperAPIKey
	}
	if opts.WhisperAPIKey == "" {
		opts.WhisperAPIKey = p.whisperKey
	}

	if opts.Prompt == "" {
		opts.Prompt = settings.CustomPrompt
	}
	return opts, nil
}

// Run processes j and returns its final state. report receives a snapshot
// after every progress change. opts must already be resolved.
func (p *Pipeline) Run(ctx context.Context, j Job, opts RunOptions, report func(Job)) (Job, error) {
	if report == nil {
		report = func(Job) {}
	}
	startTime := time.Now()

	step := func(progress int, msg string) {
		j.Progress = progress
		j.StatusMessage = msg
		j.UpdatedAt = time.Now()
		report(j)
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting job %s: %s", j.ID, j.Filename)
	p.logger.Info(ctx, "========================================")

	j.Status = StatusProcessing
	j.Error = ""
	step(10, "Preparing...")

	var (
		audio    []byte
		mimeType string
		err      error
	)
	if j.Source == SourceYouTube {
		step(20, "Downloading audio from YouTube...")
		audio, mimeType, err = p.downloadAudio(ctx, &j, step)
	} else {
		step(20, "Extracting audio...")
		audio, mimeType, err = p.extractAudio(ctx, &j, step)
	}
	if err != nil {
		return p.fail(ctx, j, report, err)
	}

	step(60, "Summarizing with Gemini...")
	summary, err := p.deps.Summarizer.Summarize(ctx, summarizer.Request{
		APIKey:   opts.GeminiAPIKey,
		Audio:    audio,
		MIMEType: mimeType,
		Prompt:   opts.Prompt,
		OnStatus: func(msg string) {
			j.StatusMessage = msg
			j.UpdatedAt = time.Now()
			report(j)
		},
	})
	if err != nil {
		return p.fail(ctx, j, report, fmt.Errorf("summarize: %w", err))
	}
	j.Summary = summary

	if p.deps.Transcriber != nil && opts.WhisperAPIKey != "" {
		step(80, "Transcribing with Whisper...")
		j.Transcript = p.transcribe(ctx, opts.WhisperAPIKey, audio, mimeType)
	}

	p.saveHistory(ctx, &j)

	j.Status = StatusCompleted
	j.FinishedAt = time.Now()
	step(100, "Completed")
	p.deps.Metrics.JobFinished(string(j.Source), string(j.Status))

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Job completed: %s", j.Filename)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return j, nil
}

func (p *Pipeline) extractAudio(ctx context.Context, j *Job, step func(int, string)) ([]byte, string, error) {
	res, err := p.deps.Extractor.Extract(ctx, j.VideoPath)
	if err != nil {
		return nil, "", fmt.Errorf("extract audio: %w", err)
	}
	j.AudioPath = res.AudioPath

	step(40, "Reading audio...")
	audio, err := os.ReadFile(res.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	return audio, res.MIMEType, nil
}

func (p *Pipeline) downloadAudio(ctx context.Context, j *Job, step func(int, string)) ([]byte, string, error) {
	if p.deps.Fetcher == nil {
		return nil, "", fmt.Errorf("youtube download is not available")
	}

	a, err := p.deps.Fetcher.Fetch(ctx, j.YouTubeURL)
	if err != nil {
		return nil, "", fmt.Errorf("download youtube audio: %w", err)
	}
	j.Filename = a.Title
	j.Size = int64(len(a.Data))

	step(40, "Audio downloaded")
	return a.Data, a.MIMEType, nil
}

// transcribe is best effort: a failed transcript never fails the job.
func (p *Pipeline) transcribe(ctx context.Context, apiKey string, audio []byte, mimeType string) string {
	tr, err := p.deps.Transcriber.Transcribe(ctx, transcriber.Request{
		APIKey:   apiKey,
		Audio:    audio,
		Filename: audioFilename(mimeType),
	})
	if err != nil {
		p.logger.Warn(ctx, "Transcription failed, continuing without transcript: %v", err)
		return ""
	}
	return tr.Markdown()
}

func (p *Pipeline) saveHistory(ctx context.Context, j *Job) {
	if p.deps.History == nil {
		return
	}

	name := j.Filename
	if j.Source == SourceYouTube {
		name = store.YouTubeTitle(j.Filename)
	}

	item, err := p.deps.History.AddHistory(ctx, store.HistoryItem{
		Filename:   name,
		Summary:    j.Summary,
		Transcript: j.Transcript,
		YouTubeURL: j.YouTubeURL,
	})
	if err != nil {
		p.logger.Warn(ctx, "Failed to save history for %s: %v", j.Filename, err)
		return
	}
	j.HistoryID = item.ID
}

func (p *Pipeline) fail(ctx context.Context, j Job, report func(Job), err error) (Job, error) {
	p.logger.Error(ctx, "Job %s (%s) failed: %v", j.ID, j.Filename, err)

	j.Status = StatusError
	j.Error = err.Error()
	j.StatusMessage = ""
	j.FinishedAt = time.Now()
	j.UpdatedAt = j.FinishedAt
	report(j)
	p.deps.Metrics.JobFinished(string(j.Source), string(j.Status))
	return j, err
}

func audioFilename(mimeType string) string {
	switch mimeType {
	case "audio/webm":
		return "audio.webm"
	case "audio/mp4", "audio/m4a":
		return "audio.m4a"
	case "audio/ogg":
		return "audio.ogg"
	default:
		return "audio.mp3"
	}
}
