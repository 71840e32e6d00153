// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/sessions", "200"))

	RecordAPIRequest("GET", "/api/v1/sessions", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/sessions", "200", 5*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/sessions", "200"))
	if after-before != 2 {
		t.Errorf("counter delta = %v, want 2", after-before)
	}
}

func TestTrackActiveRequestLifecycle(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got-base != 2 {
		t.Errorf("gauge delta after 2 increments = %v, want 2", got-base)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("gauge = %v, want baseline %v", got, base)
	}
}

func TestRecordDiagnosis(t *testing.T) {
	before := testutil.ToFloat64(DiagnosesTotal.WithLabelValues("pre", "sad"))
	RecordDiagnosis("pre", "sad")
	after := testutil.ToFloat64(DiagnosesTotal.WithLabelValues("pre", "sad"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestRecordRecommendations(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsServed.WithLabelValues("content"))

	RecordRecommendations("content", 3)
	RecordRecommendations("content", 0) // zero counts are not recorded

	after := testutil.ToFloat64(RecommendationsServed.WithLabelValues("content"))
	if after-before != 3 {
		t.Errorf("counter delta = %v, want 3", after-before)
	}
}

func TestRecordGenuinenessOutcomes(t *testing.T) {
	genuineBefore := testutil.ToFloat64(GenuinenessAssessments.WithLabelValues("genuine"))
	suspectBefore := testutil.ToFloat64(GenuinenessAssessments.WithLabelValues("suspect"))

	RecordGenuineness(true, 0.82)
	RecordGenuineness(false, 0.36)

	if got := testutil.ToFloat64(GenuinenessAssessments.WithLabelValues("genuine")); got-genuineBefore != 1 {
		t.Errorf("genuine delta = %v, want 1", got-genuineBefore)
	}
	if got := testutil.ToFloat64(GenuinenessAssessments.WithLabelValues("suspect")); got-suspectBefore != 1 {
		t.Errorf("suspect delta = %v, want 1", got-suspectBefore)
	}
}

func TestCatalogSizeGauge(t *testing.T) {
	CatalogSize.Set(7)
	if got := testutil.ToFloat64(CatalogSize); got != 7 {
		t.Errorf("gauge = %v, want 7", got)
	}
	CatalogSize.Set(0)
}
