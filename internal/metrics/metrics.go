// Package metrics holds the Prometheus collectors for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_llm_requests_total",
			Help: "Total number of generation calls by provider and result",
		},
		[]string{"provider", "result"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draftsmith_llm_request_duration_seconds",
			Help:    "Generation call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)

	// Evidence metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_search_requests_total",
			Help: "Total number of evidence search backend calls",
		},
		[]string{"backend", "result"},
	)

	SearchCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_search_cache_total",
			Help: "Search cache lookups by result (hit, miss, shared)",
		},
		[]string{"result"},
	)

	EncyclopediaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_encyclopedia_requests_total",
			Help: "Total number of encyclopedia lookups",
		},
		[]string{"kind", "result"},
	)

	// Verification metrics
	VerificationItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_verification_items_total",
			Help: "Judged claims by status",
		},
		[]string{"status"},
	)

	RevisionRounds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draftsmith_revision_rounds",
			Help:    "Regeneration rounds used by the revision loop",
			Buckets: []float64{0, 1, 2, 3},
		},
		[]string{"loop"},
	)
)

var (
	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draftsmith_http_requests_total",
			Help: "API requests by route and status code",
		},
		[]string{"route", "code"},
	)
)

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultEmpty = "empty"
)
