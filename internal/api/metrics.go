package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codecoach/internal/complexity"
	"codecoach/internal/engine"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	analyses        *prometheus.CounterVec
	degraded        *prometheus.CounterVec
	qualityScore    prometheus.Histogram
	correctness     *prometheus.CounterVec
}

// NewMetrics registers the coach collectors and the Go runtime collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coach_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_analyses_total",
			Help: "Completed analyses by language and estimated time complexity",
		}, []string{"language", "time_complexity"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_analyses_degraded_total",
			Help: "Analyses answered with a fallback result",
		}, []string{"code"}),
		qualityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coach_quality_score",
			Help:    "Distribution of quality scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		correctness: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_correctness_verdicts_total",
			Help: "Analyses by whether a correctness verdict was merged",
		}, []string{"available"}),
	}
	reg.MustRegister(
		m.requests, m.requestDuration, m.analyses, m.degraded, m.qualityScore, m.correctness,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) observeAnalysis(language string, resp *engine.Response) {
	m.analyses.WithLabelValues(language, complexityLabel(resp.Analysis.TimeComplexity)).Inc()
	m.qualityScore.Observe(resp.Analysis.QualityScore)
	if resp.Degraded != nil {
		m.degraded.WithLabelValues(string(resp.Degraded.Code)).Inc()
	}
	m.correctness.WithLabelValues(strconv.FormatBool(resp.Recommendations.Correctness != nil)).Inc()
}

// complexityLabel keeps the label set finite: every polynomial degree of 3 or
// more shares one series.
func complexityLabel(b complexity.Bound) string {
	if b.Class == complexity.Polynomial {
		return "O(n^k)"
	}
	return b.String()
}
