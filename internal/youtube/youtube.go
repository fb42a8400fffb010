package youtube

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
)

const defaultMIMEType = "audio/mp4"

var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/shorts/[\w-]+`),
}

// ValidateURL reports whether url is a watch, short-link or shorts URL.
func ValidateURL(url string) bool {
	url = strings.TrimSpace(url)
	for _, p := range urlPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// Fetch resolves the video, checks its length and streams the best audio-only
// format into memory.
func (f *implFetcher) Fetch(ctx context.Context, url string) (Audio, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Audio{}, ErrMissingURL
	}
	if !ValidateURL(url) {
		return Audio{}, ErrInvalidURL
	}

	video, err := f.client.GetVideoContext(ctx, url)
	if err != nil {
		return Audio{}, fmt.Errorf("get video info: %w", err)
	}

	if f.maxDuration > 0 && video.Duration > f.maxDuration {
		return Audio{}, fmt.Errorf("%w: %s is longer than %s", ErrTooLong, video.Duration.Truncate(time.Second), f.maxDuration)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return Audio{}, ErrNoAudio
	}

	f.logger.Info(ctx, "Downloading YouTube audio: %q (itag %d, %d bps)", video.Title, format.ItagNo, format.Bitrate)

	stream, _, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return Audio{}, fmt.Errorf("open audio stream: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return Audio{}, fmt.Errorf("download audio: %w", err)
	}

	return Audio{
		Title:    video.Title,
		Duration: int(video.Duration.Seconds()),
		MIMEType: audioMIMEType(format.MimeType),
		Data:     data,
	}, nil
}

// bestAudioFormat picks the audio-only format with the highest bitrate.
func bestAudioFormat(formats yt.FormatList) *yt.Format {
	var best *yt.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || bitrate(f) > bitrate(best) {
			best = f
		}
	}
	return best
}

func bitrate(f *yt.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// audioMIMEType drops codec parameters: `audio/webm; codecs="opus"` -> audio/webm.
func audioMIMEType(mime string) string {
	mime = strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	if mime == "" {
		return defaultMIMEType
	}
	return mime
}
