// Package metrics exposes Prometheus collectors for the fetch/extract
// pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal          *prometheus.CounterVec
	rateLimitDelaySeconds prometheus.Histogram
	entriesSkippedTotal   *prometheus.CounterVec
	extractionsTotal      *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plawfetch_fetches_total",
				Help: "Total number of upstream HTTP fetches, labeled by status code.",
			},
			[]string{"status"},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plawfetch_rate_limit_delay_seconds",
				Help:    "Histogram of delays introduced by the rolling-window rate limiter.",
				Buckets: []float64{0.1, 1, 5, 30, 60, 300, 1800, 3600},
			},
		)

		entriesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plawfetch_entries_skipped_total",
				Help: "Total number of manifest entries skipped, labeled by reason.",
			},
			[]string{"reason"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plawfetch_extractions_total",
				Help: "Total number of text extraction attempts, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// ObserveFetch records one upstream fetch with its HTTP status code.
func ObserveFetch(status int) {
	Init()
	fetchesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveRateLimitDelay records time spent blocked in the rate limiter.
func ObserveRateLimitDelay(d time.Duration) {
	Init()
	rateLimitDelaySeconds.Observe(d.Seconds())
}

// IncEntrySkipped records a skipped manifest entry ("cached" or
// "not_xml").
func IncEntrySkipped(reason string) {
	Init()
	entriesSkippedTotal.WithLabelValues(reason).Inc()
}

// IncExtraction records one extraction attempt ("ok" or "parse_error").
func IncExtraction(result string) {
	Init()
	extractionsTotal.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
