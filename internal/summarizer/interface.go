package summarizer

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("gemini api key is required")
	ErrMissingAudio  = errors.New("audio data is required")
	ErrUploadFailed  = errors.New("gemini file processing failed")
	ErrEmptyResponse = errors.New("empty response from Gemini")
)

// Summarizer turns lecture audio into a Markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
	// AvailableModels probes the candidate models and returns those that answer.
	AvailableModels(ctx context.Context, apiKey string) ([]string, error)
}

// Request is one summarization call. Empty APIKey falls back to the
// configured keys; empty Prompt uses DefaultPrompt.
type Request struct {
	APIKey   string
	Audio    []byte
	MIMEType string
	Prompt   string
	// UseFileAPI uploads the audio even when it is small enough to inline.
	UseFileAPI bool
	OnStatus   func(status string)
}
