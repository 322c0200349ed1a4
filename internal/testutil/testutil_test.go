package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseExpect(t *testing.T) {
	tests := []struct {
		code string
		want map[string]string
	}{
		{"# expect: time=O(log n); space=O(1)\ndef f(): pass\n", map[string]string{"time": "O(log n)", "space": "O(1)"}},
		{"// expect: time=O(n)\nint f();\n", map[string]string{"time": "O(n)"}},
		{"def f(): pass\n", nil},
	}
	for _, tt := range tests {
		got := parseExpect(tt.code)
		if len(got) != len(tt.want) {
			t.Errorf("parseExpect(%q) = %v, want %v", tt.code, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("parseExpect(%q)[%s] = %q, want %q", tt.code, k, got[k], v)
			}
		}
	}
}

func TestLoadSamples(t *testing.T) {
	samples := LoadSamples(t)
	if len(samples) == 0 {
		t.Fatal("no samples found")
	}
	for i, s := range samples {
		if s.Language == "" || s.Code == "" {
			t.Errorf("sample %s incomplete: %+v", s.Name, s)
		}
		if s.Expect["time"] == "" {
			t.Errorf("sample %s has no time expectation", s.Name)
		}
		if _, err := os.Stat(s.GoldenPath()); err != nil {
			t.Errorf("sample %s has no golden file: %v", s.Name, err)
		}
		if i > 0 && samples[i-1].Name > s.Name {
			t.Errorf("samples not sorted: %s before %s", samples[i-1].Name, s.Name)
		}
	}
}

func TestNormalizeDropsVolatileFields(t *testing.T) {
	in := map[string]any{
		"id":           "x",
		"submitted_at": "2024-01-01T00:00:00Z",
		"nested":       []any{map[string]any{"timestamp": 1, "keep": 2}},
	}
	out := string(MarshalNormalized(t, in))
	if strings.Contains(out, "submitted_at") || strings.Contains(out, "timestamp") {
		t.Errorf("volatile fields kept:\n%s", out)
	}
	if !strings.Contains(out, `"keep": 2`) || !strings.HasSuffix(out, "}\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestUnifiedDiff(t *testing.T) {
	diff := unifiedDiff("a\nb\nc\n", "a\nB\nc\n", "x.json")
	for _, want := range []string{"--- x.json (expected)", "-b", "+B"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestCheckGolden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expected", "sample.json")
	data := []byte("{\n  \"time_complexity\": \"O(n)\"\n}\n")

	if _, err := checkGolden(path, data, false); err == nil || !strings.Contains(err.Error(), "golden file missing") {
		t.Fatalf("missing golden: err = %v, want golden file missing", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("missing golden was written without -update (stat err %v)", err)
	}

	recorded, err := checkGolden(path, data, true)
	if err != nil || !recorded {
		t.Fatalf("update: recorded = %v, err = %v", recorded, err)
	}
	if recorded, err := checkGolden(path, data, false); err != nil || recorded {
		t.Errorf("match: recorded = %v, err = %v", recorded, err)
	}

	changed := []byte("{\n  \"time_complexity\": \"O(n^2)\"\n}\n")
	_, err = checkGolden(path, changed, false)
	if err == nil || !strings.Contains(err.Error(), "golden mismatch") || !strings.Contains(err.Error(), `+  "time_complexity": "O(n^2)"`) {
		t.Errorf("mismatch: err = %v", err)
	}
}
