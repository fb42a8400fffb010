package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultFilename = "audio.mp3"

func (t *implTranscriber) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	if len(req.Audio) == 0 {
		return Transcript{}, ErrMissingInput
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = t.apiKey
	}
	if apiKey == "" {
		return Transcript{}, ErrMissingAPIKey
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename
	}

	t.logger.Info(ctx, "Transcribing %s (%.2f MB) with %s", filename, float64(len(req.Audio))/(1024*1024), t.model)

	resp, err := t.client(apiKey).CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   bytes.NewReader(req.Audio),
		Language: t.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	t.metrics.Transcription(err)
	if err != nil {
		return Transcript{}, fmt.Errorf("whisper transcription: %w", err)
	}

	out := Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Duration: resp.Duration,
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	t.logger.Info(ctx, "Transcription done: %d segments, %.1fs", len(out.Segments), out.Duration)
	return out, nil
}

func (t *implTranscriber) client(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if t.baseURL != "" {
		cfg.BaseURL = t.baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
