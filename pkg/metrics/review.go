package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of review operations (score, explain, review)
	ReviewLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fairfin_review_latency_seconds",
		Help:    "Latency of review operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Outcome per operation: ok, unavailable, error
	ReviewOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairfin_review_outcomes_total",
		Help: "Review operation outcomes",
	}, []string{"operation", "outcome"})

	// Requests served in a degraded mode (unaligned, synthetic names, ...)
	DegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairfin_degraded_total",
		Help: "Requests served in a degraded mode, by reason",
	}, []string{"reason"})

	ArtifactLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairfin_artifact_loads_total",
		Help: "Artifact bundle loads by result",
	}, []string{"result"})

	ArtifactCacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairfin_artifact_cache_events_total",
		Help: "Artifact cache hits, misses and invalidations",
	}, []string{"tier", "event"})
)

func Init() {
	prometheus.MustRegister(
		ReviewLatency,
		ReviewOutcomes,
		DegradedTotal,
		ArtifactLoads,
		ArtifactCacheEvents,
	)
}
