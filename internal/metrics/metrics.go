// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the assessment pipeline:
// - HTTP endpoint latency and throughput
// - session lifecycle counts
// - diagnosis and recommendation volume
// - optimistic-concurrency conflicts

var (
	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotive_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emotive_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotive_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Session lifecycle metrics
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotive_sessions_started_total",
			Help: "Total number of assessment sessions started",
		},
		[]string{"session_type"},
	)

	SessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotive_sessions_completed_total",
			Help: "Total number of assessment sessions completed",
		},
	)

	SessionsAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotive_sessions_abandoned_total",
			Help: "Total number of assessment sessions abandoned",
		},
	)

	SessionStageConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emotive_session_stage_conflicts_total",
			Help: "Total number of rejected session writes (version conflict or stage out of order)",
		},
	)

	// Scoring metrics
	DiagnosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotive_diagnoses_total",
			Help: "Total number of emotion diagnoses by primary emotion",
		},
		[]string{"stage", "emotion"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotive_recommendations_served_total",
			Help: "Total number of media recommendations served",
		},
		[]string{"source"}, // "content", "collaborative", "initial"
	)

	GenuinenessAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotive_genuineness_assessments_total",
			Help: "Total number of genuineness assessments by outcome",
		},
		[]string{"outcome"}, // "genuine", "suspect"
	)

	GenuinenessScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emotive_genuineness_score",
			Help:    "Distribution of genuineness scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	ImprovementScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emotive_improvement_score",
			Help:    "Distribution of improvement scores",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		},
	)

	// Catalog metrics
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotive_catalog_items",
			Help: "Number of media items in the current engine snapshot",
		},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDiagnosis records one diagnosis outcome for a stage ("pre" or "post").
func RecordDiagnosis(stage, emotion string) {
	DiagnosesTotal.WithLabelValues(stage, emotion).Inc()
}

// RecordRecommendations records served recommendations from one source.
func RecordRecommendations(source string, count int) {
	if count > 0 {
		RecommendationsServed.WithLabelValues(source).Add(float64(count))
	}
}

// RecordGenuineness records one genuineness assessment.
func RecordGenuineness(genuine bool, score float64) {
	outcome := "suspect"
	if genuine {
		outcome = "genuine"
	}
	GenuinenessAssessments.WithLabelValues(outcome).Inc()
	GenuinenessScore.Observe(score)
}
