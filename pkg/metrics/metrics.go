package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolverAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_attempts_total",
			Help: "Total number of candidate requests issued by the request resolver (count)",
		},
		[]string{"method", "outcome"},
	)

	ResolverResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_resolutions_total",
			Help: "Total number of resolved candidate chains by final status (count)",
		},
		[]string{"status"},
	)

	ResolverAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resolver_attempt_duration_ms",
			Help:    "Duration of a single candidate request in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"method"},
	)

	ResolverFallbackDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolver_fallback_depth",
			Help:    "Index of the candidate that answered a resolved chain (count)",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	CompileFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_compile_failures_total",
			Help: "Total number of rule drafts rejected by the compiler (count)",
		},
		[]string{"code"},
	)

	RepositoryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_operations_total",
			Help: "Total number of repository operations against the backend (count)",
		},
		[]string{"repository", "operation", "status"},
	)

	RepositoryOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_operation_duration_ms",
			Help:    "Duration of repository operations in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"repository", "operation"},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache lookups by result (count)",
		},
		[]string{"cache", "result"},
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

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served by the API (count)",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests served by the API in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method", "path"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"service", "topic", "direction"},
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

var registerOnce sync.Once

// RegisterAll registers every collector with the default registry. Safe to
// call more than once.
func RegisterAll() {
	registerOnce.Do(func() {
		RegisterResolverMetrics()
		RegisterRepositoryMetrics()
		RegisterCircuitBreakerMetrics()
		RegisterAPIMetrics()
		RegisterBrokerMetrics()
	})
}

func RegisterResolverMetrics() {
	prometheus.MustRegister(ResolverAttemptsTotal)
	prometheus.MustRegister(ResolverResolutionsTotal)
	prometheus.MustRegister(ResolverAttemptDuration)
	prometheus.MustRegister(ResolverFallbackDepth)
}

func RegisterRepositoryMetrics() {
	prometheus.MustRegister(CompileFailuresTotal)
	prometheus.MustRegister(RepositoryOperationsTotal)
	prometheus.MustRegister(RepositoryOperationDuration)
	prometheus.MustRegister(CacheRequestsTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaMessageSizeBytes)
	prometheus.MustRegister(KafkaWriteDuration)
}

func IncResolverAttempt(method, outcome string) {
	ResolverAttemptsTotal.WithLabelValues(method, outcome).Inc()
}

func IncResolverResolution(status string) {
	ResolverResolutionsTotal.WithLabelValues(status).Inc()
}

func ObserveResolverAttemptDuration(method string, duration time.Duration) {
	ResolverAttemptDuration.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
}

func ObserveResolverFallbackDepth(index int) {
	ResolverFallbackDepth.Observe(float64(index))
}

func IncCompileFailure(code string) {
	CompileFailuresTotal.WithLabelValues(code).Inc()
}

func IncRepositoryOperation(repository, operation, status string) {
	RepositoryOperationsTotal.WithLabelValues(repository, operation, status).Inc()
}

func ObserveRepositoryOperationDuration(repository, operation string, duration time.Duration) {
	RepositoryOperationDuration.WithLabelValues(repository, operation).Observe(float64(duration.Milliseconds()))
}

func IncCacheRequest(cache, result string) {
	CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

func IncHTTPRequest(method, path string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func ObserveHTTPRequestDuration(method, path string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}
