// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchRunsTotal tracks matching pipeline runs by strategy and status
	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "runs_total",
			Help:      "Total number of matching runs by winning strategy and status",
		},
		[]string{"strategy", "status"},
	)

	// MatchDuration tracks end-to-end matching duration in seconds
	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "duration_seconds",
			Help:      "Duration of matching runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	// MatchCandidatesFound tracks the number of candidates surviving dedup
	MatchCandidatesFound = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "candidates_found",
			Help:      "Number of persisted match results per run",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"strategy"},
	)

	// EmbeddingRequestsTotal tracks embedding API calls by status
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Total number of embedding provider requests",
		},
		[]string{"model", "status"},
	)

	// EmbeddingDuration tracks embedding API latency in seconds
	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Duration of embedding provider requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	// EmbeddingCacheHits tracks embedding cache lookups
	EmbeddingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "embedding",
			Name:      "cache_lookups_total",
			Help:      "Total number of embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// IngestMessagesTotal tracks incoming customer messages by status
	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "ingest",
			Name:      "messages_total",
			Help:      "Total number of ingestion messages processed by status",
		},
		[]string{"status"},
	)

	// IngestInFlight tracks records currently being processed
	IngestInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "ingest",
			Name:      "records_in_flight",
			Help:      "Number of incoming records currently being processed",
		},
	)
)
