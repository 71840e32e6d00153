// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package engine implements the emotion-adaptive scoring pipeline:
//
//   - Diagnose: per-emotion weighted scoring of questionnaire responses plus
//     media-watch telemetry, producing a primary emotion with confidence
//   - Recommend: content-based scoring of the media catalog against the
//     diagnosed emotion's opposite profile
//   - CollaborativeRecommend: similarity search over other patients' session
//     histories (Jaccard over top emotions + improvement sequence match)
//   - EvaluateImprovement: classification of the pre-to-post transition
//   - AssessGenuineness: weighted multi-factor authenticity score
//
// All scoring functions are pure and total: identical inputs yield identical
// results, malformed responses contribute zero rather than failing, and an
// empty catalog yields an empty shortlist. The Engine holds only a catalog
// snapshot, replaced wholesale via Reload; the orchestrator owns persistence.
//
// Every tunable constant lives in Config so the heuristics are independently
// testable.
package engine
