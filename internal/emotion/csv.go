// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package emotion

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// CSV column names, matched case-insensitively. Multi-valued columns carry
// comma-separated sub-lists inside the (quote-escaped) field.
const (
	colEmotion            = "emotion"
	colIntensity          = "intensity"
	colSymptoms           = "symptoms"
	colTriggers           = "triggers"
	colPhysicalSigns      = "physicalsigns"
	colMentalSigns        = "mentalsigns"
	colOppositeEmotion    = "oppositeemotion"
	colRecommendedContent = "recommendedcontent"
	colCategory           = "category"
	colSeverity           = "severity"
)

// LoadTable builds a profile table from the CSV file at path. A missing or
// malformed source is never an error: the built-in default table is returned
// instead, so callers always receive a usable table.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func LoadTable(path string, logger zerolog.Logger) *Table {
	if path == "" {
		return DefaultTable()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).
			Msg("emotion profile source unavailable, using built-in defaults")
		return DefaultTable()
	}
	defer f.Close()

	profiles, err := ParseCSV(f)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).
			Msg("emotion profile source malformed, using built-in defaults")
		return DefaultTable()
	}

	logger.Info().Str("path", path).Int("profiles", len(profiles)).
		Msg("loaded emotion profiles from CSV")
	return NewTable(profiles)
}

// ParseCSV reads profile rows from r. The first row is the header; columns are
// matched case-insensitively and may appear in any order. Blank rows and rows
// without an emotion value are skipped. Unknown emotion keys are ignored.
func ParseCSV(r io.Reader) (map[Emotion]Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // tolerate ragged rows, validated per-row below

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	profiles := make(map[Emotion]Profile)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlankRow(record) {
			continue
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := Emotion(strings.ToLower(field(colEmotion)))
		if name == "" || !name.IsValid() {
			continue
		}

		intensity, _ := strconv.Atoi(field(colIntensity))
		profiles[name] = Profile{
			Emotion:            name,
			Intensity:          intensity,
			Symptoms:           splitList(field(colSymptoms)),
			Triggers:           splitList(field(colTriggers)),
			PhysicalSigns:      splitList(field(colPhysicalSigns)),
			MentalSigns:        splitList(field(colMentalSigns)),
			Opposite:           Emotion(strings.ToLower(field(colOppositeEmotion))),
			RecommendedContent: splitList(field(colRecommendedContent)),
			Category:           Category(strings.ToLower(field(colCategory))),
			Severity:           field(colSeverity),
		}
	}

	return profiles, nil
}

// splitList splits a comma-separated sub-list field, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isBlankRow(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
