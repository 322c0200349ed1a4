package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// updateGolden controls whether golden files should be updated.
	// Use: go test ./... -run TestGolden -update
	updateGolden = flag.Bool("update", false, "update golden files")

	// sampleLang filters which sample languages to test.
	// Use: go test ./... -run TestGolden -sampleLang=py,go
	sampleLang = flag.String("sampleLang", "", "filter languages (comma-separated: py,js,go,java,cpp)")
)

// shouldUpdate reports whether golden files should be updated.
func shouldUpdate() bool {
	return *updateGolden
}

// ShouldTestLang returns true if the given language should be tested.
func ShouldTestLang(lang string) bool {
	if *sampleLang == "" {
		return true
	}
	for _, l := range strings.Split(*sampleLang, ",") {
		l = strings.TrimSpace(l)
		if l == lang || l == shortLang(lang) {
			return true
		}
	}
	return false
}

func shortLang(lang string) string {
	switch lang {
	case "python":
		return "py"
	case "javascript":
		return "js"
	case "golang":
		return "go"
	default:
		return lang
	}
}

// CompareGolden compares got against the sample's golden file, failing
// with a diff on mismatch. A missing golden file fails the test; -update
// records it instead.
func CompareGolden(t *testing.T, s Sample, got any) {
	t.Helper()

	goldenPath := s.GoldenPath()
	recorded, err := checkGolden(goldenPath, MarshalNormalized(t, got), shouldUpdate())
	if err != nil {
		t.Fatalf("%v\n\nRun with -update to record:\n  go test ./... -run %s -update", err, t.Name())
	}
	if recorded {
		t.Logf("Updated golden: %s", goldenPath)
	}
}

// checkGolden compares normalized output with the golden file at path, or
// writes it when update is set.
func checkGolden(path string, normalized []byte, update bool) (recorded bool, err error) {
	if update {
		if err := writeGolden(path, normalized); err != nil {
			return false, err
		}
		return true, nil
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, fmt.Errorf("golden file missing: %s\n\nGot:\n%s", path, normalized)
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	if !bytes.Equal(normalized, expected) {
		return false, fmt.Errorf("golden mismatch for %s:\n%s", path, unifiedDiff(string(expected), string(normalized), path))
	}
	return false, nil
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create expected directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// unifiedDiff produces a line-by-line diff with three lines of leading context.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	n := max(len(expectedLines), len(gotLines))
	var hunk []string
	hunkStart := -1

	flush := func() {
		if len(hunk) > 0 {
			fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", hunkStart+1, len(hunk), hunkStart+1, len(hunk))
			for _, line := range hunk {
				buf.WriteString(line + "\n")
			}
		}
		hunk, hunkStart = nil, -1
	}

	for i := 0; i < n; i++ {
		var exp, cur string
		if i < len(expectedLines) {
			exp = expectedLines[i]
		}
		if i < len(gotLines) {
			cur = gotLines[i]
		}

		if exp == cur {
			if hunkStart >= 0 {
				hunk = append(hunk, " "+exp)
				if len(hunk) > 6 {
					flush()
				}
			}
			continue
		}
		if hunkStart < 0 {
			hunkStart = i
			for j := max(0, i-3); j < i && j < len(expectedLines); j++ {
				hunk = append(hunk, " "+expectedLines[j])
			}
		}
		if i < len(expectedLines) && exp != "" {
			hunk = append(hunk, "-"+exp)
		}
		if i < len(gotLines) && cur != "" {
			hunk = append(hunk, "+"+cur)
		}
	}
	flush()

	return buf.String()
}
