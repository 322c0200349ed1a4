// Package quality turns a feature bag, its pattern matches and its
// complexity estimate into bounded 0-100 scores.
//
// Quality is the sum of three weighted components:
//
//	structural health  50  nesting, function length, branching, duplication
//	pattern diversity  25  how many recognised techniques the code uses
//	naming             25  single-letter names outside loop-counter idiom
//
// Complexity is a fixed table over the estimated time bound.
package quality

import (
	"fmt"

	"codecoach/internal/complexity"
	"codecoach/internal/features"
	"codecoach/internal/patterns"
)

const (
	StructuralWeight = 50.0
	DiversityWeight  = 25.0
	NamingWeight     = 25.0

	// NeutralScore is reported when the source could not be analyzed.
	NeutralScore = 50.0

	maxNesting       = 4
	maxFunctionLines = 50
	maxCyclomatic    = 10
)

// conventionalNames are single-letter names idiomatic as counters or coordinates.
var conventionalNames = map[string]bool{
	"i": true, "j": true, "k": true, "n": true, "m": true, "x": true, "y": true, "_": true,
}

// Breakdown shows how the quality score was assembled.
type Breakdown struct {
	Structural float64 `json:"structural"`
	Diversity  float64 `json:"diversity"`
	Naming     float64 `json:"naming"`
}

// Scores is the scorer's result.
type Scores struct {
	Quality    float64   `json:"quality"`
	Complexity float64   `json:"complexity"`
	Breakdown  Breakdown `json:"breakdown"`

	// Issues lists the findings that cost points
	Issues []string `json:"issues,omitempty"`
}

// Score computes quality and complexity scores. An unparsed bag gets the
// neutral score for both.
func Score(bag features.FeatureBag, matches []patterns.Match, est complexity.Estimate) Scores {
	if !bag.Parsed {
		return Scores{
			Quality:    NeutralScore,
			Complexity: NeutralScore,
			Issues:     []string{"source could not be analyzed"},
		}
	}

	var s Scores
	s.Breakdown.Structural, s.Issues = structural(bag)
	s.Breakdown.Diversity = diversity(matches)

	naming, namingIssues := naming(bag)
	s.Breakdown.Naming = naming
	s.Issues = append(s.Issues, namingIssues...)

	s.Quality = clamp(s.Breakdown.Structural + s.Breakdown.Diversity + s.Breakdown.Naming)
	s.Complexity = ComplexityScore(est.Time)
	return s
}

func structural(bag features.FeatureBag) (float64, []string) {
	score := StructuralWeight
	var issues []string

	if bag.MaxNesting > maxNesting {
		score -= 10 * float64(bag.MaxNesting-maxNesting)
		issues = append(issues, fmt.Sprintf("deep nesting detected (level %d)", bag.MaxNesting))
	}
	for _, f := range bag.Functions {
		if f.Lines > maxFunctionLines {
			score -= 10
			issues = append(issues, fmt.Sprintf("function '%s' is too long (%d lines)", f.Name, f.Lines))
		}
	}
	if bag.CyclomaticComplexity > maxCyclomatic {
		score -= min(2*float64(bag.CyclomaticComplexity-maxCyclomatic), 20)
		issues = append(issues, fmt.Sprintf("high cyclomatic complexity (%d)", bag.CyclomaticComplexity))
	}
	if bag.DuplicateLines > 0 {
		score -= min(5*float64(bag.DuplicateLines), 10)
		issues = append(issues, fmt.Sprintf("%d repeated line group(s)", bag.DuplicateLines))
	}
	return max(score, 0), issues
}

func diversity(matches []patterns.Match) float64 {
	switch len(matches) {
	case 0:
		return 10
	case 1:
		return 20
	default:
		return DiversityWeight
	}
}

func naming(bag features.FeatureBag) (float64, []string) {
	score := NamingWeight
	var issues []string
	for _, id := range bag.Identifiers {
		if len(id) == 1 && !conventionalNames[id] {
			score -= 5
			issues = append(issues, fmt.Sprintf("single-letter variable name '%s'", id))
		}
	}
	return max(score, 0), issues
}

// ComplexityScore maps a time bound to a score; faster growth scores lower.
func ComplexityScore(b complexity.Bound) float64 {
	switch b.Class {
	case complexity.Constant:
		return 100
	case complexity.Logarithmic:
		return 95
	case complexity.Linear:
		return 85
	case complexity.Linearithmic:
		return 75
	case complexity.Quadratic:
		return 55
	case complexity.Polynomial:
		return max(40-5*float64(b.Degree-3), 25)
	case complexity.Exponential:
		return 20
	case complexity.Factorial:
		return 10
	default:
		return NeutralScore
	}
}

func clamp(v float64) float64 {
	return min(max(v, 0), 100)
}
