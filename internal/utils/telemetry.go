package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Telemetry owns the service's Prometheus collectors on a private registry.
type Telemetry struct {
	reg       *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	analyses  *prometheus.CounterVec
	cache     *prometheus.CounterVec
	snapshots prometheus.Counter
	exported  *prometheus.CounterVec
}

func NewTelemetry() *Telemetry {
	t := &Telemetry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyses_generated_total",
			Help: "Analysis passes by outcome",
		}, []string{"outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshots_loaded_total",
			Help: "Entity snapshots accepted into the store",
		}),
		exported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "export_rows_total",
			Help: "Rows pushed to the export sink per table",
		}, []string{"table"}),
	}
	t.reg.MustRegister(t.requests, t.latency, t.analyses, t.cache, t.snapshots, t.exported)
	return t
}

func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{})
}

func (t *Telemetry) ObserveRequest(method, route string, status int, d time.Duration) {
	t.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	t.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (t *Telemetry) Analysis(ok bool) {
	if ok {
		t.analyses.WithLabelValues("ok").Inc()
		return
	}
	t.analyses.WithLabelValues("error").Inc()
}

func (t *Telemetry) CacheLookup(hit bool) {
	if hit {
		t.cache.WithLabelValues("hit").Inc()
		return
	}
	t.cache.WithLabelValues("miss").Inc()
}

func (t *Telemetry) SnapshotLoaded() { t.snapshots.Inc() }

func (t *Telemetry) RowsExported(table string, n int) {
	t.exported.WithLabelValues(table).Add(float64(n))
}
