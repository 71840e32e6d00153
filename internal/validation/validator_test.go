// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package validation

import (
	"strings"
	"testing"
)

func TestGetValidatorSingleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type watchRequest struct {
	MediaID         string  `validate:"required"`
	WatchedDuration float64 `validate:"gte=0"`
	CompletionRate  float64 `validate:"gte=0,lte=100"`
}

func TestValidateStructValid(t *testing.T) {
	req := watchRequest{
		MediaID:         "media-1",
		WatchedDuration: 150,
		CompletionRate:  95,
	}
	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("expected no validation error, got %v", verr)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name      string
		input     watchRequest
		wantField string
		wantInMsg string
	}{
		{
			name:      "missing media id",
			input:     watchRequest{WatchedDuration: 10, CompletionRate: 50},
			wantField: "MediaID",
			wantInMsg: "MediaID is required",
		},
		{
			name:      "negative duration",
			input:     watchRequest{MediaID: "media-1", WatchedDuration: -1, CompletionRate: 50},
			wantField: "WatchedDuration",
			wantInMsg: "greater than or equal to 0",
		},
		{
			name:      "completion above 100",
			input:     watchRequest{MediaID: "media-1", WatchedDuration: 10, CompletionRate: 120},
			wantField: "CompletionRate",
			wantInMsg: "less than or equal to 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if len(verr.Errors()) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(verr.Errors()), verr)
			}
			fe := verr.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("field = %q, want %q", fe.Field(), tt.wantField)
			}
			if !strings.Contains(fe.Error(), tt.wantInMsg) {
				t.Errorf("message %q does not contain %q", fe.Error(), tt.wantInMsg)
			}
		})
	}
}

func TestEmotionTag(t *testing.T) {
	type payload struct {
		Emotion string `validate:"required,emotion"`
	}

	if verr := ValidateStruct(&payload{Emotion: "sad"}); verr != nil {
		t.Errorf("sad should validate, got %v", verr)
	}

	verr := ValidateStruct(&payload{Emotion: "euphoric"})
	if verr == nil {
		t.Fatal("expected validation error for unknown emotion")
	}
	if !strings.Contains(verr.Error(), "known emotion") {
		t.Errorf("message %q should mention known emotion", verr.Error())
	}
}

func TestSessionStageTag(t *testing.T) {
	type payload struct {
		Stage string `validate:"omitempty,session_stage"`
	}

	for _, stage := range []string{"initial_media", "pre_assessment", "therapeutic_media",
		"post_assessment", "genuineness_assessment", "completed", ""} {
		if verr := ValidateStruct(&payload{Stage: stage}); verr != nil {
			t.Errorf("stage %q should validate, got %v", stage, verr)
		}
	}

	if verr := ValidateStruct(&payload{Stage: "warmup"}); verr == nil {
		t.Error("expected validation error for unknown stage")
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	verr := ValidateStruct(&watchRequest{WatchedDuration: 10, CompletionRate: 50})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "MediaID is required" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "MediaID" {
		t.Errorf("details field = %v, want MediaID", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	verr := ValidateStruct(&watchRequest{WatchedDuration: -1, CompletionRate: 120})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(verr.Errors()), verr)
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details fields has unexpected type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("expected 3 field entries, got %d", len(fields))
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("combined message %q should join errors", apiErr.Message)
	}
}
