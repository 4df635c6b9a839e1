// Package metrics exposes Prometheus metrics for the companion server.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	TargetChat      = "chat"
	TargetSpeech    = "speech"
	TargetEmbedding = "embedding"

	OutcomeOK          = "ok"
	OutcomeAuth        = "auth"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"

	ModeVector  = "vector"
	ModeKeyword = "keyword"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	UpstreamRequestsTotal *prometheus.CounterVec
	MemorySearchTotal     *prometheus.CounterVec
	SpeechCacheTotal      *prometheus.CounterVec

	VoiceSessionsActive prometheus.Gauge
}

var instance *Metrics
var once sync.Once

func GetInstance() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "zoxaa_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"path", "method", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "zoxaa_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"path"},
			),
			UpstreamRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "zoxaa_upstream_requests_total",
					Help: "Total number of upstream OpenAI requests by target and outcome",
				},
				[]string{"target", "outcome"},
			),
			MemorySearchTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "zoxaa_memory_search_total",
					Help: "Total number of memory searches by retrieval mode",
				},
				[]string{"mode"},
			),
			SpeechCacheTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "zoxaa_speech_cache_total",
					Help: "Speech audio cache lookups by result",
				},
				[]string{"result"},
			),
			VoiceSessionsActive: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "zoxaa_voice_sessions_active",
					Help: "Number of live voice sessions",
				},
			),
		}
	})
	return instance
}

func (m *Metrics) RecordHTTPRequest(path, method string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstream(target, outcome string) {
	m.UpstreamRequestsTotal.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) RecordMemorySearch(mode string) {
	m.MemorySearchTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordSpeechCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SpeechCacheTotal.WithLabelValues(result).Inc()
}
