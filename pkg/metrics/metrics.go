package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP server metrics. Every vector carries a service label.
var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// HttpRequestsThrottled counts requests rejected by the rate limiter.
	HttpRequestsThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_throttled_total",
			Help: "Total number of HTTP requests rejected by rate limiting",
		},
		[]string{"service"},
	)
)

// Store metrics.
var (
	DbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"service", "operation", "collection"},
	)

	DbErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"service", "operation"},
	)
)

// Cache metrics.
var (
	RedisCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_cache_hits_total",
			Help: "Total number of Redis cache hits",
		},
		[]string{"service", "key_prefix"},
	)

	RedisCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_cache_misses_total",
			Help: "Total number of Redis cache misses",
		},
		[]string{"service", "key_prefix"},
	)

	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of Redis operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"service", "operation"},
	)

	RedisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors",
		},
		[]string{"service", "operation"},
	)
)

// Event publishing metrics.
var (
	KafkaMessagesProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total number of Kafka messages produced",
		},
		[]string{"service", "topic"},
	)

	KafkaProduceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"service", "topic"},
	)

	KafkaErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Total number of Kafka errors",
		},
		[]string{"service", "topic", "operation"},
	)
)

// Seeder pipeline metrics.
var (
	SeederProductsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_products_imported_total",
			Help: "Total number of products inserted by the importer",
		},
		[]string{"category"},
	)

	// SeederRowsSkipped labels: reason = missing_name | invalid_price | over_cap
	SeederRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_rows_skipped_total",
			Help: "Total number of CSV rows dropped during import",
		},
		[]string{"category", "reason"},
	)

	SeederBatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_batch_failures_total",
			Help: "Total number of insert batches that reported an error",
		},
		[]string{"collection"},
	)

	SeederDealsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_deals_generated_total",
			Help: "Total number of deals inserted by the generator",
		},
		[]string{"department"},
	)

	SeederDealDiscount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seeder_deal_discount_percent",
			Help:    "Distribution of generated deal discounts",
			Buckets: []float64{5, 10, 15, 20, 25, 30, 35, 40, 45, 50},
		},
	)

	SeederRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seeder_run_duration_seconds",
			Help:    "Duration of seeder pipeline runs",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"pipeline", "status"},
	)

	SeederExchangeRateUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seeder_exchange_rate_updates_total",
			Help: "Total number of exchange rate refreshes",
		},
		[]string{"status"},
	)
)
