package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every custom collector the API and the worker export.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Auth Metrics
	AuthRejectionsTotal *prometheus.CounterVec
	SignupsTotal        *prometheus.CounterVec
	SigninsTotal        *prometheus.CounterVec

	// Post Metrics
	PostWritesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	EventsPublishedTotal *prometheus.CounterVec
	EventsConsumedTotal  *prometheus.CounterVec
	EventsFailedTotal    *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg. Passing a fresh registry keeps
// tests independent of the process-wide default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		AuthRejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Requests rejected by the auth middleware",
			},
			[]string{"reason"}, // missing_header, malformed_header, invalid_token, expired_token
		),

		SignupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_signups_total",
				Help: "Signup attempts by result",
			},
			[]string{"result"},
		),

		SigninsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_signins_total",
				Help: "Signin attempts by result",
			},
			[]string{"result"},
		),

		PostWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_writes_total",
				Help: "Post create and update operations by result",
			},
			[]string{"operation", "result"},
		),

		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		EventsConsumedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),

		EventsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_failed_total",
				Help: "Messages that could not be processed",
			},
			[]string{"queue_name", "error_type"},
		),
	}
}
