package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/lecture-digest/pkg/retry"
)

const defaultMIMEType = "audio/mp3"

// Summarize sends the audio to Gemini with the prompt. Audio above the inline
// limit goes through the File API.
func (s *implSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	if len(req.Audio) == 0 {
		return "", ErrMissingAudio
	}
	if req.APIKey == "" && len(s.apiKeys) == 0 {
		return "", ErrMissingAPIKey
	}
	if req.Prompt == "" {
		req.Prompt = DefaultPrompt
	}
	if req.MIMEType == "" {
		req.MIMEType = defaultMIMEType
	}
	if req.OnStatus == nil {
		req.OnStatus = func(string) {}
	}

	sizeMB := float64(len(req.Audio)) / (1024 * 1024)
	if req.UseFileAPI || sizeMB > s.inlineLimitMB {
		s.logger.Info(ctx, "Audio is %.2f MB, using Gemini File API", sizeMB)
		summary, err := s.summarizeWithFile(ctx, req)
		s.metrics.SummaryRequest("file_api", err)
		return summary, err
	}

	summary, err := s.summarizeInline(ctx, req)
	s.metrics.SummaryRequest("inline", err)
	return summary, err
}

func (s *implSummarizer) summarizeInline(ctx context.Context, req Request) (string, error) {
	req.OnStatus("Sending request to Gemini...")

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		genai.NewPartFromBytes(req.Audio, req.MIMEType),
	}

	return s.generateWithRetry(ctx, req, func(ctx context.Context, key string) (string, error) {
		return s.api.Generate(ctx, key, s.model, parts)
	}, req.APIKey == "")
}

// summarizeWithFile uploads the audio, waits until Gemini finished processing
// it, generates and deletes the upload. The file is bound to the key that
// uploaded it, so keys are not rotated here.
func (s *implSummarizer) summarizeWithFile(ctx context.Context, req Request) (string, error) {
	key := req.APIKey
	if key == "" {
		key = s.currentAPIKey()
	}

	req.OnStatus("Uploading audio to Gemini...")
	file, err := s.api.Upload(ctx, key, req.Audio, req.MIMEType, "audio_"+uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	defer s.deleteFile(ctx, key, file.Name)

	file, err = s.waitForFile(ctx, key, file)
	if err != nil {
		return "", err
	}

	req.OnStatus("Sending request to Gemini...")
	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		genai.NewPartFromURI(file.URI, file.MIMEType),
	}

	fixedKey := func(ctx context.Context, _ string) (string, error) {
		return s.api.Generate(ctx, key, s.model, parts)
	}
	return s.generateWithRetry(ctx, req, fixedKey, false)
}

func (s *implSummarizer) waitForFile(ctx context.Context, key string, file *genai.File) (*genai.File, error) {
	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		}

		next, err := s.api.GetFile(ctx, key, file.Name)
		if err != nil {
			return nil, fmt.Errorf("get file state: %w", err)
		}
		file = next
	}

	if file.State == genai.FileStateFailed {
		return nil, ErrUploadFailed
	}
	return file, nil
}

func (s *implSummarizer) deleteFile(ctx context.Context, key, name string) {
	// The request context may already be done; cleanup still has to happen.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.api.DeleteFile(ctx, key, name); err != nil {
		s.logger.Warn(ctx, "Failed to delete Gemini file %s: %v", name, err)
	}
}

// generateWithRetry retries rate-limited calls with exponential backoff
// (1s, 2s, 4s...). With rotate set, each retry moves to the next configured key.
func (s *implSummarizer) generateWithRetry(ctx context.Context, req Request, call func(ctx context.Context, key string) (string, error), rotate bool) (string, error) {
	policy := retry.Policy{
		MaxAttempts:  s.maxRetries,
		InitialDelay: s.retryDelay,
		Factor:       2,
		Retryable:    isRateLimitError,
		Sleep:        s.sleep,
		OnRetry: func(attempt int, wait time.Duration) {
			s.metrics.SummaryRetry()
			if rotate {
				s.rotateKey()
			}
			msg := fmt.Sprintf("Rate limited. Retrying in %ds (%d/%d)...", int(wait.Seconds()), attempt, s.maxRetries)
			s.logger.Warn(ctx, "%s", msg)
			req.OnStatus(msg)
		},
	}

	summary, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		key := req.APIKey
		if key == "" {
			key = s.currentAPIKey()
		}
		return call(ctx, key)
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return summary, nil
}

// AvailableModels sends a tiny request to each candidate model.
func (s *implSummarizer) AvailableModels(ctx context.Context, apiKey string) ([]string, error) {
	if apiKey == "" {
		if len(s.apiKeys) == 0 {
			return nil, ErrMissingAPIKey
		}
		apiKey = s.currentAPIKey()
	}

	var working []string
	for _, model := range candidateModels {
		if _, err := s.api.Generate(ctx, apiKey, model, []*genai.Part{genai.NewPartFromText("Test")}); err != nil {
			s.logger.Debug(ctx, "Model %s not available: %v", model, err)
			continue
		}
		working = append(working, model)
	}
	return working, nil
}

func (s *implSummarizer) currentAPIKey() string {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()
	return s.apiKeys[s.currentKey]
}

func (s *implSummarizer) rotateKey() {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()
	if len(s.apiKeys) > 1 {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

// isRateLimitError matches 429 / quota failures from the Gemini API.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Resource has been exhausted") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}
