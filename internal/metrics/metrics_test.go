package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.JobFinished("upload", "completed")
	m.SummaryRequest("inline", nil)
	m.SummaryRetry()
	m.Transcription(errors.New("x"))
	m.ObserveExtraction(time.Second)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.JobFinished("youtube", "completed")
	m.SummaryRequest("file_api", errors.New("boom"))
	m.SummaryRetry()
	m.ObserveExtraction(2 * time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`digest_jobs_total{source="youtube",status="completed"} 1`,
		`digest_summary_requests_total{mode="file_api",outcome="error"} 1`,
		`digest_summary_retries_total 1`,
		`digest_audio_extraction_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
