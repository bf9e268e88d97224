package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	NotificationFanoutCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_fanout_count",
			Help: "Total number of notification rows created by fan-out",
		},
		[]string{"type"},
	)

	EmailOutcomeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_outcome_count",
			Help: "Outbound email decisions by outcome",
		},
		[]string{"type", "outcome"}, // outcome: sent, failed, suppressed, deferred, rate_limited
	)

	DigestDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_delivery_count",
			Help: "Digest emails delivered by the worker sweep",
		},
		[]string{"digest_type", "status"},
	)

	ProviderSendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_provider_send_latency_ms",
			Help:    "Email provider call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"status"},
	)
)

// RecordHTTPRequestDuration records one handled HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementFanout counts notification rows created for a notification type.
func IncrementFanout(notifType string, n int) {
	NotificationFanoutCount.WithLabelValues(notifType).Add(float64(n))
}

// RecordEmailOutcome counts one dispatcher decision.
func RecordEmailOutcome(notifType, outcome string) {
	EmailOutcomeCount.WithLabelValues(notifType, outcome).Inc()
}

// RecordDigestDelivery counts one digest email attempt.
func RecordDigestDelivery(digestType, status string) {
	DigestDeliveryCount.WithLabelValues(digestType, status).Inc()
}

// RecordProviderSendLatency records an email provider round trip.
func RecordProviderSendLatency(status string, duration time.Duration) {
	ProviderSendLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}
