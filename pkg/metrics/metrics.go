package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Total number of webhook deliveries received, by outcome (count)",
		},
		[]string{"status"},
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Total number of events extracted from webhook deliveries (count)",
		},
		[]string{"type"},
	)

	ParseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_parse_duration_ms",
			Help:    "Payload parse duration in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"status"},
	)

	ForwardRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forward_requests_total",
			Help: "Total number of downstream forward attempts (count)",
		},
		[]string{"status"},
	)
)

// RegisterIngestMetrics registers every collector the ingest service emits.
// Call it once from main before the router starts serving /metrics.
func RegisterIngestMetrics() {
	prometheus.MustRegister(WebhooksReceivedTotal)
	prometheus.MustRegister(WebhookEventsTotal)
	prometheus.MustRegister(ParseDuration)
	prometheus.MustRegister(ForwardRequestsTotal)
}

// ObserveParseDuration records one parse duration sample.
func ObserveParseDuration(d time.Duration, status string) {
	ParseDuration.WithLabelValues(status).Observe(float64(d.Nanoseconds()) / float64(time.Millisecond))
}
