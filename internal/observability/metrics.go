package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlog_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, bypass).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlog_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// UpstreamRequests counts third-party calls by service and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlog_upstream_requests_total",
		Help: "Upstream requests by service and outcome",
	}, []string{"service", "outcome"})

	// UpstreamLatency records third-party call latency.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wanderlog_upstream_latency_seconds",
		Help:    "Upstream request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wanderlog_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})

	// EngagementEvents counts like/dislike attempts by polarity and outcome.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlog_engagement_events_total",
		Help: "Engagement attempts by polarity and outcome",
	}, []string{"polarity", "outcome"})

	// FeedAssemblyLatency records how long feed enrichment takes by listing.
	FeedAssemblyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wanderlog_feed_assembly_latency_seconds",
		Help:    "Feed enrichment latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"listing"})

	// APIKeyUsage counts guarded requests by success.
	APIKeyUsage = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlog_api_key_usage_total",
		Help: "API-key guarded requests by success",
	}, []string{"success"})
)

// TrackFeed returns a function that records feed assembly latency when called (e.g. defer).
func TrackFeed(listing string) func() {
	start := time.Now()
	return func() {
		FeedAssemblyLatency.WithLabelValues(listing).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(service, outcome string, start time.Time) {
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamLatency.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
