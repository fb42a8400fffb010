package httpapi

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/job"
	"github.com/nguyentantai21042004/lecture-digest/internal/store"
	"github.com/nguyentantai21042004/lecture-digest/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-digest/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-digest/internal/youtube"
)

var (
	errBadRequest = errors.New("bad request")
	errNotReady   = errors.New("summary is not ready yet")
	errNoAudio    = errors.New("no extracted audio for this job")
	errNoVideos   = errors.New("no video files in upload")
	errEmpty      = errors.New("nothing to export")
)

// badRequest wraps msg so it maps to 400.
func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, errNoVideos),
		errors.Is(err, youtube.ErrMissingURL),
		errors.Is(err, youtube.ErrInvalidURL),
		errors.Is(err, youtube.ErrTooLong),
		errors.Is(err, youtube.ErrNoAudio),
		errors.Is(err, summarizer.ErrMissingAPIKey),
		errors.Is(err, summarizer.ErrMissingAudio),
		errors.Is(err, transcriber.ErrMissingAPIKey),
		errors.Is(err, transcriber.ErrMissingInput),
		errors.Is(err, job.ErrMissingAPIKey),
		errors.Is(err, job.ErrNotRetryable):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, job.ErrNotFound),
		errors.Is(err, errNoAudio),
		errors.Is(err, errEmpty):
		return http.StatusNotFound
	case errors.Is(err, job.ErrAlreadyRunning),
		errors.Is(err, job.ErrBusy),
		errors.Is(err, errNotReady):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}
