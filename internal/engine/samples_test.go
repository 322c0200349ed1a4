package engine

import (
	"context"
	"slices"
	"strings"
	"testing"

	"codecoach/internal/complexity"
	"codecoach/internal/testutil"
)

// sampleSnapshot is the classification recorded in a sample's golden file.
// Scores and metrics are left out so the file holds in both extraction modes.
type sampleSnapshot struct {
	Language       string           `json:"language"`
	Time           complexity.Bound `json:"time_complexity"`
	Space          complexity.Bound `json:"space_complexity"`
	Reasons        []string         `json:"complexity_reasons"`
	Patterns       []string         `json:"patterns"`
	Algorithms     []string         `json:"algorithms"`
	DataStructures []string         `json:"data_structures"`
}

func TestGoldenSamples(t *testing.T) {
	e := newTestEngine(t, nil)

	testutil.ForEachSample(t, func(t *testing.T, s testutil.Sample) {
		resp, err := e.Analyze(context.Background(), Request{
			Code:         s.Code,
			Language:     s.Language,
			ProblemTitle: s.Name,
		})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		a := resp.Analysis

		if want := s.Expect["time"]; want != "" && a.TimeComplexity.String() != want {
			t.Errorf("time = %s, want %s (reasons %v)", a.TimeComplexity, want, a.Reasons)
		}
		if want := s.Expect["space"]; want != "" && a.SpaceComplexity.String() != want {
			t.Errorf("space = %s, want %s (reasons %v)", a.SpaceComplexity, want, a.Reasons)
		}
		if want := s.Expect["detects"]; want != "" {
			found := slices.Concat(a.Patterns, a.Algorithms, a.DataStructures)
			for _, name := range strings.Split(want, ",") {
				if !slices.Contains(found, strings.TrimSpace(name)) {
					t.Errorf("detections %v missing %s", found, name)
				}
			}
		}

		testutil.CompareGolden(t, s, sampleSnapshot{
			Language:       s.Language,
			Time:           a.TimeComplexity,
			Space:          a.SpaceComplexity,
			Reasons:        a.Reasons,
			Patterns:       a.Patterns,
			Algorithms:     a.Algorithms,
			DataStructures: a.DataStructures,
		})
	})
}
