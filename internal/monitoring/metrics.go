package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	realtimePublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_publishes_total",
			Help: "Total room publishes by channel kind and outcome",
		},
		[]string{"kind", "status"},
	)

	notificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total notifications persisted by edit fanout",
		},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// RecordHTTPRequest tracks one finished HTTP request.
func RecordHTTPRequest(route, method, status string, duration time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordRealtimePublish tracks one room publish attempt. kind is "event" or
// "user"; status is "ok" or "error".
func RecordRealtimePublish(kind, status string) {
	realtimePublishes.WithLabelValues(kind, status).Inc()
}

// RecordNotificationsCreated tracks notifications persisted by a fanout.
func RecordNotificationsCreated(n int) {
	notificationsCreated.Add(float64(n))
}

// RecordRateLimited tracks a request rejected by the rate limiter.
func RecordRateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}
