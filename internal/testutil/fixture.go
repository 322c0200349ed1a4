// Package testutil provides sample loading and golden-file helpers for
// end-to-end engine tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// Sample is one solution file under testdata/samples.
type Sample struct {
	// Name is the file name without extension
	Name string

	// Language is the language tag inferred from the extension
	Language string

	// Path is the absolute path to the sample
	Path string

	// Code is the file content
	Code string

	// Expect holds the key=value pairs of the "expect:" header line
	Expect map[string]string
}

var sampleLanguages = map[string]string{
	".py":   "python",
	".java": "java",
	".js":   "javascript",
	".cpp":  "cpp",
	".go":   "go",
}

// GoldenPath returns the path of the sample's golden response.
func (s Sample) GoldenPath() string {
	return filepath.Join(filepath.Dir(s.Path), "expected", s.Name+".json")
}

// LoadSamples reads every sample, failing the test on error.
func LoadSamples(t *testing.T) []Sample {
	t.Helper()

	root := samplesRoot(t)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Failed to read samples directory: %v", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		lang, ok := sampleLanguages[ext]
		if !ok {
			continue
		}
		path := filepath.Join(root, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read sample %s: %v", path, err)
		}
		code := string(data)
		samples = append(samples, Sample{
			Name:     strings.TrimSuffix(entry.Name(), ext),
			Language: lang,
			Path:     path,
			Code:     code,
			Expect:   parseExpect(code),
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples
}

// parseExpect reads a first line such as
//
//	# expect: time=O(n); space=O(1); detects=hash_table
func parseExpect(code string) map[string]string {
	first, _, _ := strings.Cut(code, "\n")
	_, header, ok := strings.Cut(first, "expect:")
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

// ForEachSample runs fn for each sample as a subtest. Respects the
// -sampleLang flag.
func ForEachSample(t *testing.T, fn func(t *testing.T, s Sample)) {
	t.Helper()

	samples := LoadSamples(t)
	if len(samples) == 0 {
		t.Skip("No samples available")
	}
	for _, s := range samples {
		if !ShouldTestLang(s.Language) {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			fn(t, s)
		})
	}
}

// samplesRoot returns the absolute path to testdata/samples/.
func samplesRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "samples")
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Samples root not found: %s", root)
	}
	return root
}
