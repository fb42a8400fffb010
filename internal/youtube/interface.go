package youtube

import (
	"context"
	"errors"
)

var (
	ErrMissingURL = errors.New("youtube url is required")
	ErrInvalidURL = errors.New("invalid youtube url")
	ErrTooLong    = errors.New("video exceeds the maximum duration")
	ErrNoAudio    = errors.New("no audio track found")
)

// Fetcher downloads the audio track of a YouTube video.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Audio, error)
}

// Audio is an in-memory audio track with its video metadata.
type Audio struct {
	Title    string
	Duration int // seconds
	MIMEType string
	Data     []byte
}
