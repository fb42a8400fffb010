package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/lecture-digest/pkg/executor"
)

const audioMIMEType = "audio/mp3"

// Extract extracts a mono speech-grade mp3 from the video.
// 16kHz mono at 64kbps is plenty for recognition and keeps uploads small.
func (e *implExtractor) Extract(ctx context.Context, videoPath string) (Result, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat input: %w", err)
	}

	if err := os.MkdirAll(e.tempDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	audioPath := filepath.Join(e.tempDir, "output_"+uuid.NewString()+".mp3")

	// A missing duration only degrades progress estimates.
	duration, err := e.Duration(ctx, videoPath)
	if err != nil {
		e.logger.Debug(ctx, "Duration probe failed for %s: %v", videoPath, err)
	}

	e.logger.Info(ctx, "Extracting audio: %s", videoPath)

	args := []string{
		"-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(e.cfg.Channels),
		"-ar", strconv.Itoa(e.cfg.SampleRate),
		"-b:a", e.cfg.Bitrate,
		"-f", "mp3",
		audioPath,
		"-y",
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if _, err := e.executor.Execute(runCtx, e.cfg.Binary, args...); err != nil {
		os.Remove(audioPath)
		if errors.Is(err, executor.ErrBinaryNotFound) {
			return Result{}, ErrFFmpegMissing
		}
		return Result{}, fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	e.metrics.ObserveExtraction(time.Since(start))

	out, err := os.Stat(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat extracted audio: %w", err)
	}

	res := buildResult(info.Size(), out.Size(), duration, e.inlineLimitMB)
	res.AudioPath = audioPath

	e.logger.Info(ctx, "Audio extracted: %s (%s MB, %s%% smaller)", audioPath, res.SizeMB, res.CompressionRatio)
	return res, nil
}

// ExtractBytes writes the upload to a temp file, extracts and reads the audio
// back. Both temp files are removed whatever happens.
func (e *implExtractor) ExtractBytes(ctx context.Context, filename string, data []byte) (Result, []byte, error) {
	if len(data) == 0 {
		return Result{}, nil, fmt.Errorf("empty upload")
	}
	if err := os.MkdirAll(e.tempDir, 0755); err != nil {
		return Result{}, nil, fmt.Errorf("create temp dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	inputPath := filepath.Join(e.tempDir, "input_"+uuid.NewString()+ext)
	if err := os.WriteFile(inputPath, data, 0644); err != nil {
		return Result{}, nil, fmt.Errorf("write upload: %w", err)
	}
	defer e.removeTemp(ctx, inputPath)

	res, err := e.Extract(ctx, inputPath)
	if err != nil {
		return Result{}, nil, err
	}
	defer e.removeTemp(ctx, res.AudioPath)

	audio, err := os.ReadFile(res.AudioPath)
	if err != nil {
		return Result{}, nil, fmt.Errorf("read extracted audio: %w", err)
	}
	res.AudioPath = ""

	return res, audio, nil
}

// Duration asks ffprobe for the container duration in seconds.
func (e *implExtractor) Duration(ctx context.Context, path string) (float64, error) {
	out, err := e.executor.Execute(ctx, e.cfg.ProbeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return d, nil
}

func (e *implExtractor) removeTemp(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	}
}

func buildResult(originalSize, compressedSize int64, duration, inlineLimitMB float64) Result {
	sizeMB := float64(compressedSize) / (1024 * 1024)

	ratio := 0.0
	if originalSize > 0 {
		ratio = (1 - float64(compressedSize)/float64(originalSize)) * 100
	}

	return Result{
		MIMEType:         audioMIMEType,
		OriginalSize:     originalSize,
		CompressedSize:   compressedSize,
		CompressionRatio: strconv.FormatFloat(ratio, 'f', 1, 64),
		Duration:         duration,
		SizeMB:           strconv.FormatFloat(sizeMB, 'f', 2, 64),
		NeedsFileAPI:     sizeMB > inlineLimitMB,
	}
}
