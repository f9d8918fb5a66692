package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Mobile auth bridge metrics
	AuthLoginsInitiated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_logins_initiated_total",
			Help: "Total number of mobile login attempts started",
		},
	)

	CASCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cas_callbacks_total",
			Help: "Total number of CAS callbacks by result",
		},
		[]string{"result"},
	)

	AuthPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_polls_total",
			Help: "Total number of mobile auth polls by outcome",
		},
		[]string{"outcome"},
	)

	PendingAuthsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_auths_active",
			Help: "Number of in-flight mobile login attempts",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live mobile sessions",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation", "table"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)
)
