package httpapi

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/media"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

const apiKeyHeader = "X-Gemini-Api-Key"

type extractResponse struct {
	Success bool   `json:"success"`
	Audio   string `json:"audio"`
	media.Result
}

// handleExtractAudio converts an uploaded video to base64 mp3.
func (s *Server) handleExtractAudio(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, badRequest("file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(data) == 0 {
		s.fail(c, badRequest("file is empty"))
		return
	}

	res, audio, err := s.deps.Extractor.ExtractBytes(c.Request.Context(), fh.Filename, data)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, extractResponse{
		Success: true,
		Audio:   base64.StdEncoding.EncodeToString(audio),
		Result:  res,
	})
}

type audioRequest struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mimeType"`
	APIKey   string `json:"apiKey"`
	Prompt   string `json:"prompt"`
}

func (r audioRequest) decode() ([]byte, error) {
	if r.Audio == "" {
		return nil, badRequest("audio is required")
	}
	data, err := base64.StdEncoding.DecodeString(r.Audio)
	if err != nil {
		return nil, badRequest("audio must be base64")
	}
	return data, nil
}

// handleGeminiFile summarizes base64 audio through the Gemini File API.
func (s *Server) handleGeminiFile(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}
	audio, err := req.decode()
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	prompt := req.Prompt
	if prompt == "" {
		if prompt, err = s.deps.Store.Prompt(ctx); err != nil {
			s.fail(c, err)
			return
		}
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, summarizer.Request{
		APIKey:     s.geminiKey(ctx, req.APIKey),
		Audio:      audio,
		MIMEType:   req.MIMEType,
		Prompt:     prompt,
		UseFileAPI: true,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// handleWhisper returns a timestamped transcript of base64 audio.
func (s *Server) handleWhisper(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}
	audio, err := req.decode()
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	tr, err := s.deps.Transcriber.Transcribe(ctx, transcriber.Request{
		APIKey:   s.whisperKey(ctx, req.APIKey),
		Audio:    audio,
		Filename: "audio.mp3",
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"transcript": tr.Text,
		"segments":   tr.Segments,
		"duration":   tr.Duration,
	})
}

type youtubeRequest struct {
	URL           string `json:"url"`
	APIKey        string `json:"apiKey"`
	WhisperAPIKey string `json:"whisperApiKey"`
	Prompt        string `json:"prompt"`
}

func (s *Server) bindYouTube(c *gin.Context) (youtubeRequest, bool) {
	var req youtubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return req, false
	}
	if req.URL == "" {
		s.fail(c, youtube.ErrMissingURL)
		return req, false
	}
	if !youtube.ValidateURL(req.URL) {
		s.fail(c, youtube.ErrInvalidURL)
		return req, false
	}
	return req, true
}

// handleYouTube downloads the audio track and returns it as base64.
func (s *Server) handleYouTube(c *gin.Context) {
	req, ok := s.bindYouTube(c)
	if !ok {
		return
	}

	a, err := s.deps.Fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"title":    a.Title,
		"duration": a.Duration,
		"audio":    base64.StdEncoding.EncodeToString(a.Data),
		"mimeType": a.MIMEType,
	})
}

// handleYouTubeSummarize runs the whole pipeline for a URL and saves it to history.
func (s *Server) handleYouTubeSummarize(c *gin.Context) {
	req, ok := s.bindYouTube(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	opts, err := s.deps.Pipeline.Resolve(ctx, job.RunOptions{
		GeminiAPIKey:  req.APIKey,
		WhisperAPIKey: req.WhisperAPIKey,
		Prompt:        req.Prompt,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	j := job.FromInput(job.Input{Source: job.SourceYouTube, YouTubeURL: req.URL})
	j, err = s.deps.Pipeline.Run(ctx, j, opts, nil)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"title":      j.Filename,
		"summary":    j.Summary,
		"transcript": j.Transcript,
		"historyId":  j.HistoryID,
	})
}

// handleModels lists Gemini models that answer for the caller's key.
func (s *Server) handleModels(c *gin.Context) {
	ctx := c.Request.Context()
	models, err := s.deps.Summarizer.AvailableModels(ctx, s.geminiKey(ctx, c.GetHeader(apiKeyHeader)))
	if err != nil {
		s.fail(c, err)
		return
	}
	if models == nil {
		models = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// geminiKey prefers the request key, then the saved one. Empty lets the
// summarizer use configured keys.
func (s *Server) geminiKey(ctx context.Context, requested string) string {
	if requested != "" {
		return requested
	}
	settings, err := s.deps.Store.Settings(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Failed to read settings: %v", err)
		return ""
	}
	return settings.GeminiAPIKey
}

func (s *Server) whisperKey(ctx context.Context, requested string) string {
	if requested != "" {
		return requested
	}
	settings, err := s.deps.Store.Settings(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Failed to read settings: %v", err)
		return ""
	}
	return settings.WhisperAPIKey
}
