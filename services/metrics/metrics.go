// Package metricsvc exposes the service's Prometheus collectors.
package metricsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/markbook/core/marks"
)

const namespace = "markbook"

type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	submissions *prometheus.CounterVec
}

var _ marks.Metrics = (*Metrics)(nil)

// New registers the collectors on a dedicated registry, together with the Go and process collectors.
func New(build string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Marks submissions by outcome.",
		}, []string{"outcome"}),
	}
	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build of the running service.",
	}, []string{"build"})
	buildInfo.WithLabelValues(build).Set(1)

	m.registry.MustRegister(
		m.requests, m.durations, m.submissions, buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// known outcomes are exported at zero
	for _, outcome := range []string{
		marks.OutcomeSubmitted, marks.OutcomeAlreadySubmitted, marks.OutcomeNotFound, marks.OutcomeError,
	} {
		m.submissions.WithLabelValues(outcome)
	}
	return m
}

func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served request. route is the matched route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.durations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
