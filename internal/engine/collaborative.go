// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"sort"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// CollaborativeRecommend returns media that proved effective for patients with
// a similar emotional history. It is advisory: with sparse history it degrades
// to an empty list and is never the sole recommendation source.
func (e *Engine) CollaborativeRecommend(patientID string, history, allSessions []models.Session) []string {
	cfg := e.config.Collaborative

	self := e.BuildPatientProfile(history)
	if len(self.TopEmotions) == 0 {
		return nil
	}

	type similarPatient struct {
		id         string
		similarity float64
		sessions   []models.Session
	}

	byPatient := make(map[string][]models.Session)
	order := make([]string, 0)
	for _, s := range allSessions {
		if s.PatientID == patientID || s.PatientID == "" {
			continue
		}
		if _, seen := byPatient[s.PatientID]; !seen {
			order = append(order, s.PatientID)
		}
		byPatient[s.PatientID] = append(byPatient[s.PatientID], s)
	}

	similar := make([]similarPatient, 0)
	for _, id := range order {
		sessions := byPatient[id]
		profile := e.BuildPatientProfile(sessions)
		sim := e.Similarity(self, profile)
		if sim > cfg.SimilarityCutoff {
			similar = append(similar, similarPatient{id: id, similarity: sim, sessions: sessions})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].similarity > similar[j].similarity
	})
	if len(similar) > cfg.MaxSimilarPatients {
		similar = similar[:cfg.MaxSimilarPatients]
	}

	// Collect media associated with improved outcomes, ordered by the
	// similarity of the contributing patient, deduplicated.
	seen := make(map[string]struct{})
	out := make([]string, 0, cfg.MaxResults)
	for _, sp := range similar {
		for _, mediaID := range effectiveMedia(sp.sessions) {
			if _, dup := seen[mediaID]; dup {
				continue
			}
			seen[mediaID] = struct{}{}
			out = append(out, mediaID)
			if len(out) >= cfg.MaxResults {
				return out
			}
		}
	}
	return out
}

// BuildPatientProfile reduces a patient's session history to its emotional
// fingerprint: the most common pre-assessment emotions and the ordered
// improvement sequence.
func (e *Engine) BuildPatientProfile(sessions []models.Session) PatientProfile {
	counts := make(map[emotion.Emotion]int)
	sequence := make([]models.ImprovementType, 0, len(sessions))

	for _, s := range sessions {
		if s.PreAssessment != nil && s.PreAssessment.AssessedEmotion != nil {
			counts[s.PreAssessment.AssessedEmotion.Overall]++
		}
		if s.PostAssessment != nil && s.PostAssessment.Improvement != "" {
			sequence = append(sequence, s.PostAssessment.Improvement)
		}
	}

	type emotionCount struct {
		em    emotion.Emotion
		count int
	}
	ranked := make([]emotionCount, 0, len(counts))
	// Iterate the stable enumeration so ranking is deterministic under ties.
	for _, em := range emotion.All {
		if c, ok := counts[em]; ok {
			ranked = append(ranked, emotionCount{em: em, count: c})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	top := make([]emotion.Emotion, 0, e.config.Collaborative.TopEmotions)
	for i, ec := range ranked {
		if i >= e.config.Collaborative.TopEmotions {
			break
		}
		top = append(top, ec.em)
	}

	return PatientProfile{TopEmotions: top, ImprovementSequence: sequence}
}

// Similarity combines the Jaccard index of the top-emotion sets with the
// positional match rate of the improvement sequences over their overlapping
// prefix. The weights are heuristic defaults, tunable via config.
func (e *Engine) Similarity(a, b PatientProfile) float64 {
	cfg := e.config.Collaborative
	return cfg.EmotionWeight*jaccard(a.TopEmotions, b.TopEmotions) +
		cfg.ImprovementWeight*prefixMatchRate(a.ImprovementSequence, b.ImprovementSequence)
}

// jaccard computes |A∩B| / |A∪B| over emotion sets. Two empty sets have
// similarity zero.
func jaccard(a, b []emotion.Emotion) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[emotion.Emotion]struct{}, len(a))
	for _, em := range a {
		setA[em] = struct{}{}
	}
	setB := make(map[emotion.Emotion]struct{}, len(b))
	for _, em := range b {
		setB[em] = struct{}{}
	}
	intersection := 0
	union := len(setA)
	for em := range setB {
		if _, ok := setA[em]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

// prefixMatchRate is the fraction of positions that agree over the shorter
// sequence's length. Zero when either sequence is empty.
func prefixMatchRate(a, b []models.ImprovementType) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

// effectiveMedia returns the therapeutic media IDs from sessions whose
// outcome was classified improved.
func effectiveMedia(sessions []models.Session) []string {
	out := make([]string, 0)
	for _, s := range sessions {
		if s.PostAssessment == nil || s.PostAssessment.Improvement != models.ImprovementImproved {
			continue
		}
		for _, w := range s.TherapeuticMedia {
			if w.MediaID != "" {
				out = append(out, w.MediaID)
			}
		}
	}
	return out
}
