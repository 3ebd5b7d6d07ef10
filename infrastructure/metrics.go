package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_llm_requests_total",
			Help: "Total number of LLM generateContent calls by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_llm_request_duration_seconds",
			Help:    "Duration of LLM generateContent calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model"},
	)

	ExtractionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_scorecard_extractions_total",
			Help: "Scorecard extraction results by parse method or failure reason",
		},
		[]string{"result"},
	)

	RasterizedPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_rasterized_pages",
			Help:    "Number of pages rendered per uploaded document",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	ResumesAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analyses_total",
			Help: "Total number of analyze requests by mode and error code",
		},
		[]string{"mode", "code"},
	)
)
