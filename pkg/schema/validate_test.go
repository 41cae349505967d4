package schema

import (
	"strings"
	"testing"
)

func TestValidate_RequiredAndOptional(t *testing.T) {
	s := Schema{
		"restaurant_name":   String(),
		"brief_description": Optional(String()),
	}

	tests := []struct {
		name    string
		data    map[string]any
		wantErr string
	}{
		{
			name: "all present",
			data: map[string]any{"restaurant_name": "Maydan", "brief_description": "hearth"},
		},
		{
			name: "optional absent",
			data: map[string]any{"restaurant_name": "Maydan"},
		},
		{
			name:    "required absent",
			data:    map[string]any{"brief_description": "hearth"},
			wantErr: "required",
		},
		{
			name:    "optional present but wrong type",
			data:    map[string]any{"restaurant_name": "Maydan", "brief_description": 7},
			wantErr: "expected string",
		},
		{
			name: "extra fields ignored",
			data: map[string]any{"restaurant_name": "Maydan", "neighborhood": "Shaw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(s, tt.data)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AggregatesAllFailures(t *testing.T) {
	s := Schema{
		"restaurant_name": String(),
		"score":           Range(1.0, 5.0),
	}

	err := Validate(s, map[string]any{"score": 7.2})
	if err == nil {
		t.Fatal("Expected aggregated failures")
	}
	failures := Failures(err)
	if len(failures) != 2 {
		t.Fatalf("Expected 2 failures (missing name, out-of-range score), got %d: %v", len(failures), err)
	}
}

func TestValidate_EmptySchemaPassesEverything(t *testing.T) {
	if err := Validate(nil, map[string]any{"anything": 1}); err != nil {
		t.Errorf("Empty schema should not validate: %v", err)
	}
}

func TestValidateEach_CarriesIndex(t *testing.T) {
	items := []map[string]any{
		{"restaurant_name": "Maydan"},
		{"brief_description": "no name"},
	}

	err := ValidateEach(ExtractionItem(), items)
	if err == nil {
		t.Fatal("Expected failure for second item")
	}
	if !strings.Contains(err.Error(), "item 1") {
		t.Errorf("Expected index in error, got %v", err)
	}
}

func TestRankingPayload_PinsScoreScale(t *testing.T) {
	tests := []struct {
		name    string
		score   any
		wantErr bool
	}{
		{"lower bound", 1.0, false},
		{"upper bound", 5.0, false},
		{"mid scale", 4.3, false},
		{"whole number from JSON", float64(3), false},
		{"below scale", 0.9, true},
		{"above scale", 5.1, true},
		{"not a number", "4.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(RankingPayload(), map[string]any{"score": tt.score})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(score=%v) error = %v, wantErr %v", tt.score, err, tt.wantErr)
			}
		})
	}
}

func TestEditPayload_ClosedActionSet(t *testing.T) {
	ok := map[string]any{"action": "remove", "restaurant_name": "Maydan"}
	if err := Validate(EditPayload(), ok); err != nil {
		t.Errorf("Expected remove to validate: %v", err)
	}

	mixedCase := map[string]any{"action": "Remove"}
	if err := Validate(EditPayload(), mixedCase); err != nil {
		t.Errorf("Enum should be case-insensitive: %v", err)
	}

	invented := map[string]any{"action": "archive"}
	if err := Validate(EditPayload(), invented); err == nil {
		t.Error("Expected invented action to fail")
	}
}
