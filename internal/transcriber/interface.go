package transcriber

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey = errors.New("openai api key is required")
	ErrMissingInput  = errors.New("audio data is required")
)

// Transcriber produces a timestamped transcript from audio.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Transcript, error)
}

// Request carries the audio to transcribe. Empty APIKey uses the configured key.
type Request struct {
	APIKey   string
	Audio    []byte
	Filename string
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Text     string    `json:"transcript"`
	Segments []Segment `json:"segments"`
	Duration float64   `json:"duration"`
}
