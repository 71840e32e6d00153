// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package emotion

// Profile is the static descriptor for one emotion: baseline intensity,
// symptom and sign lists, the opposite emotion used as the recommendation
// target, recommended content tags and valence category.
type Profile struct {
	// Emotion is the profile key.
	Emotion Emotion `json:"emotion"`

	// Intensity is the numeric baseline (1-5).
	Intensity int `json:"intensity"`

	// Symptoms lists typical symptoms of the emotion.
	Symptoms []string `json:"symptoms,omitempty"`

	// Triggers lists common triggers.
	Triggers []string `json:"triggers,omitempty"`

	// PhysicalSigns lists observable physical signs.
	PhysicalSigns []string `json:"physical_signs,omitempty"`

	// MentalSigns lists observable mental signs.
	MentalSigns []string `json:"mental_signs,omitempty"`

	// Opposite is the emotion therapeutic content should target.
	Opposite Emotion `json:"opposite_emotion"`

	// RecommendedContent lists content tags suited to counter the emotion.
	RecommendedContent []string `json:"recommended_content,omitempty"`

	// Category is the valence category (positive, negative, neutral).
	Category Category `json:"category"`

	// Severity is a free-form severity label (e.g. "moderate").
	Severity string `json:"severity,omitempty"`
}

// Table maps every enumerated emotion to its profile. A Table always resolves
// every valid emotion: gaps in the source data are filled from the built-in
// defaults, and invalid opposite references are replaced by the static
// opposite table.
type Table struct {
	profiles map[Emotion]Profile
}

// NewTable builds a profile table from the given profiles. Missing emotions
// are filled from Defaults(); profiles whose Opposite is not a valid emotion
// key fall back to the static opposite for their emotion.
func NewTable(profiles map[Emotion]Profile) *Table {
	merged := make(map[Emotion]Profile, len(All))
	defaults := Defaults()

	for _, e := range All {
		p, ok := profiles[e]
		if !ok {
			p = defaults[e]
		}
		p.Emotion = e
		if !p.Opposite.IsValid() {
			p.Opposite = StaticOpposite(e)
		}
		if p.Category != CategoryPositive && p.Category != CategoryNegative {
			p.Category = CategoryNeutral
		}
		merged[e] = p
	}

	return &Table{profiles: merged}
}

// DefaultTable returns a table built entirely from the built-in defaults.
func DefaultTable() *Table {
	return NewTable(Defaults())
}

// Lookup returns the profile for e. Unknown emotions resolve to the neutral
// profile so lookups are total.
func (t *Table) Lookup(e Emotion) Profile {
	if p, ok := t.profiles[e]; ok {
		return p
	}
	return t.profiles[Neutral]
}

// Opposite returns the recommendation target emotion for e.
func (t *Table) Opposite(e Emotion) Emotion {
	return t.Lookup(e).Opposite
}

// Len returns the number of profiles in the table (always len(All)).
func (t *Table) Len() int {
	return len(t.profiles)
}

// Defaults returns the built-in profile set covering every enumerated emotion.
// Used when no CSV source is available and to fill gaps in imported data.
func Defaults() map[Emotion]Profile {
	return map[Emotion]Profile{
		Happy: {
			Emotion:            Happy,
			Intensity:          5,
			Symptoms:           []string{"joy", "contentment", "excitement"},
			Opposite:           Sad,
			RecommendedContent: []string{"uplifting", "motivational"},
			Category:           CategoryPositive,
		},
		Sad: {
			Emotion:            Sad,
			Intensity:          2,
			Symptoms:           []string{"sorrow", "melancholy", "depression"},
			Opposite:           Happy,
			RecommendedContent: []string{"uplifting", "inspiring"},
			Category:           CategoryNegative,
		},
		Anxious: {
			Emotion:            Anxious,
			Intensity:          3,
			Symptoms:           []string{"worry", "nervousness", "fear"},
			Opposite:           Calm,
			RecommendedContent: []string{"calming", "relaxing"},
			Category:           CategoryNegative,
		},
		Stressed: {
			Emotion:            Stressed,
			Intensity:          4,
			Symptoms:           []string{"tension", "pressure", "overwhelm"},
			Opposite:           Relaxed,
			RecommendedContent: []string{"calming", "meditation"},
			Category:           CategoryNegative,
		},
		Angry: {
			Emotion:            Angry,
			Intensity:          4,
			Symptoms:           []string{"irritation", "frustration", "rage"},
			Opposite:           Calm,
			RecommendedContent: []string{"calming", "peaceful"},
			Category:           CategoryNegative,
		},
		Calm: {
			Emotion:            Calm,
			Intensity:          4,
			Symptoms:           []string{"peace", "serenity", "tranquility"},
			Opposite:           Energetic,
			RecommendedContent: []string{"meditation", "nature"},
			Category:           CategoryPositive,
		},
		Energetic: {
			Emotion:            Energetic,
			Intensity:          5,
			Symptoms:           []string{"vigor", "enthusiasm", "vitality"},
			Opposite:           Relaxed,
			RecommendedContent: []string{"motivational", "workout"},
			Category:           CategoryPositive,
		},
		Focused: {
			Emotion:            Focused,
			Intensity:          4,
			Symptoms:           []string{"concentration", "clarity", "engagement"},
			Opposite:           Relaxed,
			RecommendedContent: []string{"ambient", "instrumental"},
			Category:           CategoryPositive,
		},
		Relaxed: {
			Emotion:            Relaxed,
			Intensity:          4,
			Symptoms:           []string{"comfort", "ease", "rest"},
			Opposite:           Energetic,
			RecommendedContent: []string{"soothing", "peaceful"},
			Category:           CategoryPositive,
		},
		Neutral: {
			Emotion:            Neutral,
			Intensity:          3,
			Symptoms:           []string{"balance", "equilibrium"},
			Opposite:           Happy,
			RecommendedContent: []string{"balanced", "moderate"},
			Category:           CategoryNeutral,
		},
	}
}
