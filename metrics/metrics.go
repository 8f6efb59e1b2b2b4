package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "xiview"

// Metrics bundles the collectors of the API. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	queryDuration *prometheus.HistogramVec
	payloadBytes  *prometheus.HistogramVec

	poolOpen    prometheus.Gauge
	poolInUse   prometheus.Gauge
	poolIdle    prometheus.Gauge
	poolWaitCnt prometheus.Gauge

	uploads  prometheus.Gauge
	projects prometheus.Gauge
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Execution time of the aggregation queries.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"query"}),
		payloadBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_payload_bytes",
			Help:      "Size of JSON response bodies.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"route"}),
		poolOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Established connections, in use and idle.",
		}),
		poolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Connections currently in use.",
		}),
		poolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Idle connections.",
		}),
		poolWaitCnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for.",
		}),
		uploads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uploads",
			Help:      "Number of upload rows.",
		}),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "projects",
			Help:      "Number of distinct projects with at least one upload.",
		}),
	}
	reg.MustRegister(
		m.requests, m.latency, m.queryDuration, m.payloadBytes,
		m.poolOpen, m.poolInUse, m.poolIdle, m.poolWaitCnt,
		m.uploads, m.projects,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveQuery(query string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

func (m *Metrics) ObservePayload(route string, size int) {
	if m == nil {
		return
	}
	m.payloadBytes.WithLabelValues(route).Observe(float64(size))
}

// SetPoolStats exports database/sql pool statistics.
func (m *Metrics) SetPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.poolOpen.Set(float64(stats.OpenConnections))
	m.poolInUse.Set(float64(stats.InUse))
	m.poolIdle.Set(float64(stats.Idle))
	m.poolWaitCnt.Set(float64(stats.WaitCount))
}

func (m *Metrics) SetUploadCounts(uploads, projects int64) {
	if m == nil {
		return
	}
	m.uploads.Set(float64(uploads))
	m.projects.Set(float64(projects))
}
