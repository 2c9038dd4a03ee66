package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics (pages served to the browser)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkboard_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// Backend API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_upstream_requests_total",
			Help: "Total number of calls made to the backend API",
		},
		[]string{"method", "route", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkboard_upstream_request_duration_seconds",
			Help:    "Backend API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CredentialsClearedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkboard_credentials_cleared_total",
			Help: "Stored tokens cleared after a 401 from the backend",
		},
	)

	// Application Metrics
	ToastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_toasts_total",
			Help: "Notifications shown to users",
		},
		[]string{"level"},
	)

	StaleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_stale_responses_total",
			Help: "Fetch results discarded because a newer request was issued",
		},
		[]string{"resource"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkboard_active_sessions",
			Help: "View sessions currently held in memory",
		},
	)

	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkboard_sessions_evicted_total",
			Help: "View sessions dropped to stay under the session cap",
		},
	)
)
