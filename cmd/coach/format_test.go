package main

import (
	"strings"
	"testing"

	"codecoach/internal/complexity"
	"codecoach/internal/engine"
	"codecoach/internal/errors"
	"codecoach/internal/recommend"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(map[string]string{"key": "value"}, "xml")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func TestFormatResponse_UsesJSONNames(t *testing.T) {
	resp := &engine.Response{
		Analysis: engine.AnalysisBundle{
			TimeComplexity:  complexity.ON,
			SpaceComplexity: complexity.O1,
			QualityScore:    80,
		},
	}

	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{FormatYAML, []string{"time_complexity: O(n)", "space_complexity: O(1)", "quality_score: 80"}},
		{FormatTOML, []string{`time_complexity = "O(n)"`, `space_complexity = "O(1)"`, "quality_score = 80"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, err := FormatResponse(resp, tt.format)
			if err != nil {
				t.Fatalf("FormatResponse: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if strings.Contains(out, "null") {
				t.Errorf("output should not carry nulls:\n%s", out)
			}
		})
	}
}

func TestFormatResponse_TOMLWrapsLists(t *testing.T) {
	out, err := FormatResponse([]string{"a", "b"}, FormatTOML)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(out, "items = [") {
		t.Errorf("list should be wrapped in a table:\n%s", out)
	}
}

func TestFormatHuman(t *testing.T) {
	resp := &engine.Response{
		Analysis: engine.AnalysisBundle{
			DataStructures:  []string{"hash_table"},
			TimeComplexity:  complexity.ON,
			SpaceComplexity: complexity.ON,
			QualityScore:    72.5,
		},
		Recommendations: recommend.Bundle{
			KnowledgeGaps: []recommend.Gap{{Concept: "two_pointers", Severity: recommend.SeverityLow, Reason: "not used"}},
		},
		Degraded: &engine.Degraded{Code: errors.Timeout, Message: "slow"},
	}

	out, err := FormatResponse(resp, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	for _, w := range []string{"TIMEOUT: slow", "Time:       O(n)", "Quality:    72.5", "Data structures: hash_table", "two_pointers"} {
		if !strings.Contains(out, w) {
			t.Errorf("human output missing %q:\n%s", w, out)
		}
	}

	multi, err := FormatResponse([]FileResult{
		{File: "a.py", Response: resp},
		{File: "b.py", Error: errors.Newf(errors.InvalidRequest, "bad")},
	}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse: %v", err)
	}
	if !strings.Contains(multi, "a.py\n----") || !strings.Contains(multi, "Error: [INVALID_REQUEST] bad") {
		t.Errorf("multi-file output:\n%s", multi)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer title", 6, "longe…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
