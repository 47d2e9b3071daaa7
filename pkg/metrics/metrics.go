package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of inbound webhook deliveries (count)",
		},
		[]string{"status"},
	)

	WebhookProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_ms",
			Help:    "End-to-end processing duration per inbound delivery in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	TenantSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_syncs_total",
			Help: "Total number of per-tenant sync attempts (count)",
		},
		[]string{"outcome"},
	)

	FallbackSyncsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fallback_syncs_total",
			Help: "Total number of orders written to the fallback destination (count)",
		},
	)

	SchemaCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schema_cache_requests_total",
			Help: "Total number of schema lookups by cache tier result (count)",
		},
		[]string{"result"},
	)

	DestinationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "destination_request_duration_ms",
			Help:    "Duration of destination API requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)
)

func RegisterSyncMetrics() {
	prometheus.MustRegister(
		WebhookDeliveriesTotal,
		WebhookProcessingDuration,
		TenantSyncsTotal,
		FallbackSyncsTotal,
		SchemaCacheRequestsTotal,
		DestinationRequestDuration,
	)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(
		KafkaMessagesWrittenTotal,
		KafkaWriteDuration,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveWebhookDuration(duration time.Duration, status string) {
	WebhookProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncTenantSync(outcome string) {
	TenantSyncsTotal.WithLabelValues(outcome).Inc()
}

func IncSchemaCache(result string) {
	SchemaCacheRequestsTotal.WithLabelValues(result).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}
