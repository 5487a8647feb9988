// Package metrics exposes Prometheus instrumentation for the preset server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "preset"

// Conversion results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the server's collectors, all registered on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploadSize  prometheus.Histogram
	requests    *prometheus.CounterVec
}

// New returns a new [Metrics] with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		conversions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of preset conversions",
			},
			[]string{"source", "target", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of preset conversions in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"source", "target"},
		),
		uploadSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_size_bytes",
				Help:      "Size of uploaded preset files in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
}

// ObserveConversion records a finished conversion.
func (m *Metrics) ObserveConversion(source, target string, took time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.conversions.WithLabelValues(source, target, result).Inc()
	m.duration.WithLabelValues(source, target).Observe(took.Seconds())
}

// ObserveUpload records the size of an uploaded file.
func (m *Metrics) ObserveUpload(size int64) {
	m.uploadSize.Observe(float64(size))
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler returns the HTTP handler serving the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
