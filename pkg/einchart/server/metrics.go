package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buckets for seconds resolutions of histograms
var buckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds the server collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	BuildErrors   prometheus.Counter
	Observations  prometheus.Gauge
}

// NewMetrics registers the collectors and the Go runtime collector on a
// new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "einchart",
				Name:      "fetch_attempts_total",
				Help:      "Retrieval attempts by source and result.",
			},
			[]string{"source", "result"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "einchart",
				Name:      "build_duration_seconds",
				Help:      "Time taken to fetch and build the chart.",
				Buckets:   buckets,
			},
		),
		BuildErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "einchart",
				Name:      "build_errors_total",
				Help:      "Failed chart builds.",
			},
		),
		Observations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "einchart",
				Name:      "observations",
				Help:      "Observations in the current chart.",
			},
		),
	}
	m.registry.MustRegister(
		m.FetchAttempts,
		m.BuildDuration,
		m.BuildErrors,
		m.Observations,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveFetch records a retrieval attempt. It matches source.Observer.
func (m *Metrics) ObserveFetch(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FetchAttempts.WithLabelValues(source, result).Inc()
}

func (m *Metrics) observeBuild(start time.Time, observations int, err error) {
	m.BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.BuildErrors.Inc()
		return
	}
	m.Observations.Set(float64(observations))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
