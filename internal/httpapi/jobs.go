package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/lecture-digest/internal/export"
	"github.com/nguyentantai21042004/lecture-digest/internal/job"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".webm": true, ".m4v": true, ".flv": true,
}

func (s *Server) handleListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"jobs":   s.deps.Jobs.List(),
		"counts": s.deps.Jobs.Counts(),
	})
}

func (s *Server) handleGetJob(c *gin.Context) {
	j, err := s.deps.Jobs.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, j)
}

// handleAddJobs stores uploaded videos in the temp dir and queues them.
// Non-video parts are reported back as skipped.
func (s *Server) handleAddJobs(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		s.fail(c, badRequest("multipart form with files is required"))
		return
	}

	if err := os.MkdirAll(s.cfg.Paths.Temp, 0755); err != nil {
		s.fail(c, err)
		return
	}

	var inputs []job.Input
	skipped := []string{}
	for _, fh := range form.File["files"] {
		if !isVideoUpload(fh.Filename, fh.Header.Get("Content-Type")) {
			skipped = append(skipped, fh.Filename)
			continue
		}

		dst := filepath.Join(s.cfg.Paths.Temp, "upload_"+uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			s.fail(c, err)
			return
		}
		inputs = append(inputs, job.Input{
			Filename: fh.Filename,
			Size:     fh.Size,
			Path:     dst,
			Source:   job.SourceUpload,
		})
	}

	if len(inputs) == 0 {
		s.fail(c, errNoVideos)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"jobs":    s.deps.Jobs.Add(inputs...),
		"skipped": skipped,
	})
}

func isVideoUpload(filename, contentType string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

type runRequest struct {
	APIKey        string `json:"apiKey"`
	WhisperAPIKey string `json:"whisperApiKey"`
	Prompt        string `json:"prompt"`
}

// runOptions reads the optional JSON body; the Gemini key may also come
// from the X-Gemini-Api-Key header.
func (s *Server) runOptions(c *gin.Context) (job.RunOptions, error) {
	var req runRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return job.RunOptions{}, badRequest("invalid JSON body")
		}
	}
	if req.APIKey == "" {
		req.APIKey = c.GetHeader(apiKeyHeader)
	}
	return job.RunOptions{
		GeminiAPIKey:  req.APIKey,
		WhisperAPIKey: req.WhisperAPIKey,
		Prompt:        req.Prompt,
	}, nil
}

func (s *Server) handleStartJobs(c *gin.Context) {
	opts, err := s.runOptions(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	n, err := s.deps.Jobs.StartAll(s.jobCtx, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"started": n})
}

func (s *Server) handleRetryJob(c *gin.Context) {
	opts, err := s.runOptions(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.deps.Jobs.Retry(s.jobCtx, c.Param("id"), opts); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"retried": c.Param("id")})
}

func (s *Server) handleClearJobs(c *gin.Context) {
	if err := s.deps.Jobs.Clear(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleJobSummary(c *gin.Context) {
	j, err := s.deps.Jobs.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if j.Status != job.StatusCompleted {
		s.fail(c, errNotReady)
		return
	}
	attachment(c, export.SummaryFilename(j.Filename), markdownType, []byte(j.Summary))
}

func (s *Server) handleJobAudio(c *gin.Context) {
	j, err := s.deps.Jobs.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if j.AudioPath == "" {
		s.fail(c, errNoAudio)
		return
	}
	if _, err := os.Stat(j.AudioPath); err != nil {
		s.fail(c, errNoAudio)
		return
	}
	c.FileAttachment(j.AudioPath, export.AudioFilename(j.Filename))
}

// handleJobsBundle downloads every completed summary as one file.
func (s *Server) handleJobsBundle(c *gin.Context) {
	var items []export.Item
	for _, j := range s.deps.Jobs.List() {
		if j.Status == job.StatusCompleted {
			items = append(items, export.Item{Name: j.Filename, Summary: j.Summary})
		}
	}
	if len(items) == 0 {
		s.fail(c, errEmpty)
		return
	}
	attachment(c, export.BatchFilename(time.Now()), markdownType, []byte(export.Bundle(items)))
}
