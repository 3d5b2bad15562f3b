package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_latency_ms",
			Help:    "Model completion call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"task", "status"},
	)

	ProposalProcessedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_processed_count",
			Help: "Total number of proposals processed",
		},
		[]string{"status"}, // status: completed, failed
	)

	EmailDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfp_email_dispatch_count",
			Help: "Total number of RFP emails dispatched to vendors",
		},
		[]string{"status"}, // status: sent, failed
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of database queries exceeding the slow threshold",
		},
	)
)

func RecordAICallLatency(task, status string, duration time.Duration) {
	AICallLatency.WithLabelValues(task, status).Observe(float64(duration.Milliseconds()))
}

func IncrementProposalProcessed(status string) {
	ProposalProcessedCount.WithLabelValues(status).Inc()
}

func IncrementEmailDispatch(status string) {
	EmailDispatchCount.WithLabelValues(status).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}
