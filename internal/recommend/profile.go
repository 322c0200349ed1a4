// Package recommend synthesizes knowledge gaps, concepts to learn and
// style-specific advice from an analysis, a learner profile and an optional
// correctness verdict.
package recommend

import (
	"fmt"
	"strings"
)

// Style is a learning-style dimension.
type Style string

const (
	Analytical    Style = "analytical"
	Creative      Style = "creative"
	Practical     Style = "practical"
	Collaborative Style = "collaborative"

	// Balanced is reported when no style weight is positive.
	Balanced Style = "balanced"
)

// Styles lists the style dimensions in declaration order; ties resolve to
// the earlier entry.
var Styles = []Style{Analytical, Creative, Practical, Collaborative}

// StyleVector weighs the four style dimensions. Weights are non-negative.
type StyleVector struct {
	Analytical    float64 `json:"analytical" yaml:"analytical" toml:"analytical" mapstructure:"analytical" validate:"gte=0"`
	Creative      float64 `json:"creative" yaml:"creative" toml:"creative" mapstructure:"creative" validate:"gte=0"`
	Practical     float64 `json:"practical" yaml:"practical" toml:"practical" mapstructure:"practical" validate:"gte=0"`
	Collaborative float64 `json:"collaborative" yaml:"collaborative" toml:"collaborative" mapstructure:"collaborative" validate:"gte=0"`
}

// Weight returns the weight of one dimension.
func (v StyleVector) Weight(s Style) float64 {
	switch s {
	case Analytical:
		return v.Analytical
	case Creative:
		return v.Creative
	case Practical:
		return v.Practical
	case Collaborative:
		return v.Collaborative
	default:
		return 0
	}
}

// Dominant returns the highest-weighted style, or Balanced when every
// weight is zero or negative.
func (v StyleVector) Dominant() Style {
	best, bestWeight := Balanced, 0.0
	for _, s := range Styles {
		if w := v.Weight(s); w > bestWeight {
			best, bestWeight = s, w
		}
	}
	return best
}

// SingleStyle returns a vector weighting only s.
func SingleStyle(s Style) StyleVector {
	var v StyleVector
	switch s {
	case Analytical:
		v.Analytical = 1
	case Creative:
		v.Creative = 1
	case Practical:
		v.Practical = 1
	case Collaborative:
		v.Collaborative = 1
	}
	return v
}

// SkillLevel is the learner's self-reported level.
type SkillLevel string

const (
	Beginner     SkillLevel = "beginner"
	Intermediate SkillLevel = "intermediate"
	Advanced     SkillLevel = "advanced"
)

// ParseSkillLevel resolves a level name; empty means intermediate.
func ParseSkillLevel(s string) (SkillLevel, error) {
	switch SkillLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", Intermediate:
		return Intermediate, nil
	case Beginner:
		return Beginner, nil
	case Advanced:
		return Advanced, nil
	default:
		return "", fmt.Errorf("invalid skill level %q", s)
	}
}

// Multiplier scales base study minutes for the level.
func (l SkillLevel) Multiplier() float64 {
	switch l {
	case Beginner:
		return 1.5
	case Advanced:
		return 0.7
	default:
		return 1.0
	}
}

func (l SkillLevel) rank() int {
	switch l {
	case Beginner:
		return 0
	case Advanced:
		return 2
	default:
		return 1
	}
}

// LearnerProfile is the caller-owned snapshot the synthesizer reads.
// The engine never mutates it.
type LearnerProfile struct {
	Style StyleVector `json:"style" yaml:"style" toml:"style" mapstructure:"style"`

	// PriorGaps tallies how often each concept was flagged before
	PriorGaps map[string]int `json:"prior_gaps,omitempty" yaml:"prior_gaps,omitempty" toml:"prior_gaps,omitempty" mapstructure:"prior_gaps"`

	// Mastered concepts are never reported as gaps or suggested
	Mastered []string `json:"mastered,omitempty" yaml:"mastered,omitempty" toml:"mastered,omitempty" mapstructure:"mastered"`

	SkillLevel SkillLevel `json:"skill_level,omitempty" yaml:"skill_level,omitempty" toml:"skill_level,omitempty" mapstructure:"skill_level"`
}

// HasMastered reports whether concept is in the mastered set.
func (p LearnerProfile) HasMastered(concept string) bool {
	for _, m := range p.Mastered {
		if m == concept {
			return true
		}
	}
	return false
}

// Occurrences returns the prior tally for concept.
func (p LearnerProfile) Occurrences(concept string) int {
	if p.PriorGaps == nil {
		return 0
	}
	return max(p.PriorGaps[concept], 0)
}

func (p LearnerProfile) level() SkillLevel {
	if p.SkillLevel == "" {
		return Intermediate
	}
	return p.SkillLevel
}
