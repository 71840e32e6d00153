// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package emotion defines the enumerated emotion set and the emotion profile
// table that drives diagnosis and recommendation.
//
// The profile table is a static lookup built either from a CSV source or from
// a built-in default set. It is a leaf package with no internal dependencies;
// every other scoring component consumes it read-only.
package emotion

// Emotion is one of the fixed enumerated emotion labels.
type Emotion string

// The enumerated emotion set. Every diagnosis resolves to one of these.
const (
	Happy     Emotion = "happy"
	Calm      Emotion = "calm"
	Energetic Emotion = "energetic"
	Focused   Emotion = "focused"
	Relaxed   Emotion = "relaxed"
	Sad       Emotion = "sad"
	Anxious   Emotion = "anxious"
	Stressed  Emotion = "stressed"
	Angry     Emotion = "angry"
	Neutral   Emotion = "neutral"
)

// All lists every valid emotion, in stable order.
var All = []Emotion{
	Happy, Calm, Energetic, Focused, Relaxed,
	Sad, Anxious, Stressed, Angry, Neutral,
}

// Category partitions emotions by valence.
type Category string

// Valence categories.
const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryNeutral  Category = "neutral"
)

// negativeSet is the fixed negative partition used by diagnosis boosting,
// improvement classification and genuineness alignment.
var negativeSet = map[Emotion]struct{}{
	Sad: {}, Anxious: {}, Stressed: {}, Angry: {},
}

// positiveSet is the fixed positive partition used by improvement classification.
var positiveSet = map[Emotion]struct{}{
	Happy: {}, Calm: {}, Energetic: {}, Focused: {}, Relaxed: {},
}

// IsValid reports whether e is one of the enumerated emotions.
func (e Emotion) IsValid() bool {
	for _, v := range All {
		if e == v {
			return true
		}
	}
	return false
}

// IsNegative reports whether e belongs to the negative partition
// (sad, anxious, stressed, angry).
func (e Emotion) IsNegative() bool {
	_, ok := negativeSet[e]
	return ok
}

// IsPositive reports whether e belongs to the positive partition
// (happy, calm, energetic, focused, relaxed).
func (e Emotion) IsPositive() bool {
	_, ok := positiveSet[e]
	return ok
}

// String returns the emotion label.
func (e Emotion) String() string {
	return string(e)
}

// staticOpposites is the fallback opposite-emotion table used when a profile
// does not carry an opposite. Unknown emotions default to calm.
var staticOpposites = map[Emotion]Emotion{
	Sad:       Happy,
	Anxious:   Calm,
	Stressed:  Relaxed,
	Angry:     Calm,
	Happy:     Calm,
	Neutral:   Happy,
	Energetic: Relaxed,
	Relaxed:   Energetic,
	Focused:   Relaxed,
	Calm:      Energetic,
}

// StaticOpposite returns the fallback opposite emotion for e.
func StaticOpposite(e Emotion) Emotion {
	if opp, ok := staticOpposites[e]; ok {
		return opp
	}
	return Calm
}
