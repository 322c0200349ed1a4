// Package engine is the boundary around the analysis pipeline. It validates
// requests, enforces the input limits and time budget, optionally consults
// a correctness checker, and returns the analysis plus its recommendations.
package engine

import (
	"codecoach/internal/complexity"
	"codecoach/internal/errors"
	"codecoach/internal/features"
	"codecoach/internal/patterns"
	"codecoach/internal/quality"
	"codecoach/internal/recommend"
)

// Request is the input contract.
type Request struct {
	Code             string                 `json:"code" yaml:"code"`
	Language         string                 `json:"language" yaml:"language" validate:"required,language"`
	ProblemTitle     string                 `json:"problem_title" yaml:"problem_title" validate:"required,max=200"`
	ExpectedBehavior string                 `json:"expected_behavior,omitempty" yaml:"expected_behavior,omitempty"`
	LearnerProfile   *recommend.StyleVector `json:"learner_profile,omitempty" yaml:"learner_profile,omitempty"`
	PriorGaps        map[string]int         `json:"prior_gaps,omitempty" yaml:"prior_gaps,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
	Mastered         []string               `json:"mastered,omitempty" yaml:"mastered,omitempty" validate:"omitempty,dive,required"`
	SkillLevel       string                 `json:"skill_level,omitempty" yaml:"skill_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// Profile assembles the learner profile snapshot carried by the request.
// A request without weights gets the zero vector, which synthesizes with
// the balanced style.
func (r Request) Profile() recommend.LearnerProfile {
	p := recommend.LearnerProfile{
		PriorGaps: r.PriorGaps,
		Mastered:  r.Mastered,
	}
	if r.LearnerProfile != nil {
		p.Style = *r.LearnerProfile
	}
	// validated by the request rules
	p.SkillLevel, _ = recommend.ParseSkillLevel(r.SkillLevel)
	return p
}

// SourceUnit is one submission as the pipeline sees it.
type SourceUnit struct {
	Code             string
	Language         features.Language
	ProblemTitle     string
	ExpectedBehavior string
}

// Metrics summarizes the feature bag for display.
type Metrics struct {
	Mode                 features.Mode `json:"mode"`
	Lines                int           `json:"lines"`
	Functions            int           `json:"functions"`
	Loops                int           `json:"loops"`
	MaxLoopDepth         int           `json:"max_loop_depth"`
	MaxNesting           int           `json:"max_nesting"`
	CyclomaticComplexity int           `json:"cyclomatic_complexity"`
	Recursive            bool          `json:"recursive"`
}

// AnalysisBundle is the analysis half of the output contract.
type AnalysisBundle struct {
	Patterns        []string         `json:"patterns"`
	Algorithms      []string         `json:"algorithms"`
	DataStructures  []string         `json:"data_structures"`
	TimeComplexity  complexity.Bound `json:"time_complexity"`
	SpaceComplexity complexity.Bound `json:"space_complexity"`
	QualityScore    float64          `json:"quality_score"`
	ComplexityScore float64          `json:"complexity_score"`

	Matches          []patterns.Match  `json:"matches"`
	QualityBreakdown quality.Breakdown `json:"quality_breakdown"`
	Issues           []string          `json:"issues"`
	Reasons          []string          `json:"complexity_reasons,omitempty"`
	Metrics          Metrics           `json:"metrics"`
	Truncated        bool              `json:"truncated,omitempty"`

	Features features.FeatureBag `json:"-" yaml:"-" toml:"-"`
}

// Degraded explains why a response carries a fallback analysis.
type Degraded struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Response is the output contract.
type Response struct {
	Analysis        AnalysisBundle   `json:"analysis"`
	Recommendations recommend.Bundle `json:"recommendations"`
	Degraded        *Degraded        `json:"degraded,omitempty" yaml:"degraded,omitempty" toml:"degraded,omitempty"`
}

// BatchResult is one entry of AnalyzeBatch. Exactly one field is set.
type BatchResult struct {
	Response *Response         `json:"response,omitempty"`
	Error    *errors.CoachError `json:"error,omitempty"`
}

// synthesisInput projects the bundle onto what the synthesizer reads.
func (a AnalysisBundle) synthesisInput(title string) recommend.Analysis {
	return recommend.Analysis{
		ProblemTitle:    title,
		Patterns:        a.Patterns,
		Algorithms:      a.Algorithms,
		DataStructures:  a.DataStructures,
		Time:            a.TimeComplexity,
		Space:           a.SpaceComplexity,
		QualityScore:    a.QualityScore,
		ComplexityScore: a.ComplexityScore,
		Issues:          a.Issues,
		UsesRecursion:   a.Features.Recursion.Present,
	}
}
