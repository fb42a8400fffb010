package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// geminiAPI is the slice of the Gemini SDK the summarizer needs, keyed by API key.
type geminiAPI interface {
	Generate(ctx context.Context, apiKey, model string, parts []*genai.Part) (string, error)
	Upload(ctx context.Context, apiKey string, data []byte, mimeType, displayName string) (*genai.File, error)
	GetFile(ctx context.Context, apiKey, name string) (*genai.File, error)
	DeleteFile(ctx context.Context, apiKey, name string) error
}

// genaiBackend caches one SDK client per API key.
type genaiBackend struct {
	baseURL string
	mu      sync.Mutex
	clients map[string]*genai.Client
}

func newGenaiBackend(baseURL string) *genaiBackend {
	return &genaiBackend{
		baseURL: baseURL,
		clients: make(map[string]*genai.Client),
	}
}

func (b *genaiBackend) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.clients[apiKey]; ok {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if b.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: b.baseURL}
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	b.clients[apiKey] = c
	return c, nil
}

func (b *genaiBackend) Generate(ctx context.Context, apiKey, model string, parts []*genai.Part) (string, error) {
	client, err := b.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	result, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
	}

	return "", ErrEmptyResponse
}

func (b *genaiBackend) Upload(ctx context.Context, apiKey string, data []byte, mimeType, displayName string) (*genai.File, error) {
	client, err := b.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
}

func (b *genaiBackend) GetFile(ctx context.Context, apiKey, name string) (*genai.File, error) {
	client, err := b.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client.Files.Get(ctx, name, nil)
}

func (b *genaiBackend) DeleteFile(ctx context.Context, apiKey, name string) error {
	client, err := b.client(ctx, apiKey)
	if err != nil {
		return err
	}
	_, err = client.Files.Delete(ctx, name, nil)
	return err
}
