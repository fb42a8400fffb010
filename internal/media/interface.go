package media

import (
	"context"
	"errors"
)

// ErrFFmpegMissing is returned when ffmpeg cannot be found on the server.
var ErrFFmpegMissing = errors.New("ffmpeg is not installed on the server")

// Extractor turns uploaded videos into compressed speech audio.
type Extractor interface {
	// Extract converts the video at videoPath into an mp3 next to the temp dir.
	// The caller owns Result.AudioPath.
	Extract(ctx context.Context, videoPath string) (Result, error)
	// ExtractBytes extracts audio from an in-memory upload. No files are left behind.
	ExtractBytes(ctx context.Context, filename string, data []byte) (Result, []byte, error)
	// Duration returns the media duration in seconds reported by ffprobe.
	Duration(ctx context.Context, path string) (float64, error)
}

// Result describes an extracted audio track.
type Result struct {
	AudioPath        string  `json:"-"`
	MIMEType         string  `json:"mimeType"`
	OriginalSize     int64   `json:"originalSize"`
	CompressedSize   int64   `json:"compressedSize"`
	CompressionRatio string  `json:"compressionRatio"`
	Duration         float64 `json:"duration"`
	SizeMB           string  `json:"fileSizeMB"`
	NeedsFileAPI     bool    `json:"needsFileAPI"`
}
