package testutil

import (
	"testing"

	"github.com/goccy/go-json"
)

// volatileFields are dropped before comparison.
var volatileFields = map[string]bool{
	"timestamp":     true,
	"submitted_at":  true,
	"submission_id": true,
	"uptime":        true,
	"duration":      true,
}

// Normalize deep-copies data through JSON and drops volatile fields.
func Normalize(t *testing.T, data any) any {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal data for normalization: %v", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("Failed to unmarshal data for normalization: %v", err)
	}
	return normalizeValue(v)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			if volatileFields[k] {
				continue
			}
			out[k] = normalizeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalNormalized normalizes data and marshals it with sorted keys,
// two-space indentation and a trailing newline.
func MarshalNormalized(t *testing.T, data any) []byte {
	t.Helper()

	out, err := json.MarshalIndent(Normalize(t, data), "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal normalized data: %v", err)
	}
	return append(out, '\n')
}
