// Package metrics exposes Prometheus counters for the processing pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	jobs            *prometheus.CounterVec
	summaryRequests *prometheus.CounterVec
	summaryRetries  prometheus.Counter
	transcriptions  *prometheus.CounterVec
	extraction      prometheus.Histogram
}

// New registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digest",
			Name:      "jobs_total",
			Help:      "Finished jobs by source and final status.",
		}, []string{"source", "status"}),
		summaryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digest",
			Name:      "summary_requests_total",
			Help:      "Gemini summary requests by upload mode and outcome.",
		}, []string{"mode", "outcome"}),
		summaryRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "digest",
			Name:      "summary_retries_total",
			Help:      "Rate-limited Gemini calls that were retried.",
		}),
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digest",
			Name:      "transcriptions_total",
			Help:      "Whisper transcriptions by outcome.",
		}, []string{"outcome"}),
		extraction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "digest",
			Name:      "audio_extraction_seconds",
			Help:      "Time spent in ffmpeg extracting audio.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}

	reg.MustRegister(m.jobs, m.summaryRequests, m.summaryRetries, m.transcriptions, m.extraction)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) JobFinished(source, status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(source, status).Inc()
}

func (m *Metrics) SummaryRequest(mode string, err error) {
	if m == nil {
		return
	}
	m.summaryRequests.WithLabelValues(mode, outcome(err)).Inc()
}

func (m *Metrics) SummaryRetry() {
	if m == nil {
		return
	}
	m.summaryRetries.Inc()
}

func (m *Metrics) Transcription(err error) {
	if m == nil {
		return
	}
	m.transcriptions.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveExtraction(d time.Duration) {
	if m == nil {
		return
	}
	m.extraction.Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
