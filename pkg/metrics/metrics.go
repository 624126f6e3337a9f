// Package metrics provides Prometheus collectors for ingestion and the query API
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	ingestRunsTotal     *prometheus.CounterVec
	ingestRecordsTotal  *prometheus.CounterVec
	ingestDuration      prometheus.Histogram
	ingestJobsInFlight  prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,
		ingestRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_runs_total",
				Help: "Total number of ingestion runs",
			},
			[]string{"status"}, // success, error
		),
		ingestRecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_records_total",
				Help: "Records seen by ingestion",
			},
			[]string{"entity", "outcome"}, // outcome: created, existing, skipped
		),
		ingestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_duration_seconds",
				Help:    "Time taken by one ingestion run",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
			},
		),
		ingestJobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ingest_jobs_in_flight",
				Help: "Ingest jobs currently processed by the worker",
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.ingestRunsTotal,
		m.ingestRecordsTotal,
		m.ingestDuration,
		m.ingestJobsInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewDefaultMetrics builds a fresh registry with the Go and process collectors attached
func NewDefaultMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(registry)
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordIngestRun(err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ingestRunsTotal.WithLabelValues(status).Inc()
	m.ingestDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordIngestRecords(entity string, created, existing, skipped int) {
	if m == nil {
		return
	}
	m.ingestRecordsTotal.WithLabelValues(entity, "created").Add(float64(created))
	m.ingestRecordsTotal.WithLabelValues(entity, "existing").Add(float64(existing))
	m.ingestRecordsTotal.WithLabelValues(entity, "skipped").Add(float64(skipped))
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.ingestJobsInFlight.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.ingestJobsInFlight.Dec()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
