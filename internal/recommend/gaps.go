package recommend

import (
	"fmt"
	"strings"

	"codecoach/internal/complexity"
)

// Severity grades a knowledge gap.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity resolves a severity name.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Gap categories.
const (
	GapFundamental = "fundamental"
	GapPerformance = "performance"
	GapPattern     = "pattern"
	GapQuality     = "quality"
)

// Gap is one identified knowledge gap.
type Gap struct {
	Concept     string   `json:"concept"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Reason      string   `json:"reason"`
	Occurrences int      `json:"occurrences,omitempty"`

	deficit float64
}

// GapRule flags a concept when Trigger returns ok. The deficit in [0,1]
// sets the base severity.
type GapRule struct {
	Concept  string
	Category string
	Trigger  func(a Analysis) (deficit float64, reason string, ok bool)
}

const fundamentalDeficit = 0.25

var fundamentals = []string{"array", "hash_table", "linked_list", "recursion"}

func missingFundamental(concept string) func(Analysis) (float64, string, bool) {
	return func(a Analysis) (float64, string, bool) {
		if a.Detected(concept) {
			return 0, "", false
		}
		return fundamentalDeficit, "Missing fundamental concept: " + concept, true
	}
}

// GapRules returns the built-in rules. masteryThreshold in (0,1] sets the
// quality score below which code_quality is flagged.
func GapRules(masteryThreshold float64) []GapRule {
	rules := make([]GapRule, 0, len(fundamentals)+6)
	for _, c := range fundamentals {
		rules = append(rules, GapRule{Concept: c, Category: GapFundamental, Trigger: missingFundamental(c)})
	}
	return append(rules,
		GapRule{
			Concept:  "algorithmic_optimization",
			Category: GapPerformance,
			Trigger: func(a Analysis) (float64, string, bool) {
				switch {
				case a.Time.AtLeast(complexity.O2N):
					return 0.9, fmt.Sprintf("Time complexity %s is exponential", a.Time), true
				case a.Time.AtLeast(complexity.Poly(3)):
					return 0.7, fmt.Sprintf("Time complexity %s has deeply nested passes", a.Time), true
				case a.Time.AtLeast(complexity.ON2):
					return 0.5, "Code has suboptimal time complexity", true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "hash_table",
			Category: GapPerformance,
			Trigger: func(a Analysis) (float64, string, bool) {
				if a.Time.AtLeast(complexity.ON2) && !a.Detected("hash_table") {
					return 0.6, "Nested scans can often be replaced by hash lookups", true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "two_pointers",
			Category: GapPattern,
			Trigger: func(a Analysis) (float64, string, bool) {
				if a.Detected("array") && !a.Detected("two_pointers") {
					return 0.4, "Array problems can often be optimized with two pointers technique", true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "memoization",
			Category: GapPerformance,
			Trigger: func(a Analysis) (float64, string, bool) {
				if a.UsesRecursion && a.Time.AtLeast(complexity.O2N) && !a.Detected("dynamic_programming") {
					return 0.8, "Exponential recursion recomputes overlapping subproblems", true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "space_optimization",
			Category: GapPerformance,
			Trigger: func(a Analysis) (float64, string, bool) {
				if a.Space.AtLeast(complexity.ON2) {
					return 0.4, fmt.Sprintf("Space complexity %s may be reducible", a.Space), true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "complexity_analysis",
			Category: GapPerformance,
			Trigger: func(a Analysis) (float64, string, bool) {
				if !a.Time.Known() {
					return 0.3, "Complexity could not be determined from the code", true
				}
				return 0, "", false
			},
		},
		GapRule{
			Concept:  "code_quality",
			Category: GapQuality,
			Trigger: func(a Analysis) (float64, string, bool) {
				limit := masteryThreshold * 100
				if limit <= 0 || a.QualityScore >= limit {
					return 0, "", false
				}
				return (limit - a.QualityScore) / limit,
					fmt.Sprintf("Quality score %.0f is below %.0f", a.QualityScore, limit), true
			},
		},
	)
}

// baseSeverity maps a deficit to low, medium or high.
func baseSeverity(deficit float64) Severity {
	switch {
	case deficit < 0.35:
		return SeverityLow
	case deficit < 0.65:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Escalate raises base by the recurrence step for prior occurrences:
// one level for 1-2 priors, two for 3 or more. Raising past high gives
// critical, so any recurrence grades a gap strictly above its base.
func Escalate(base Severity, prior int) Severity {
	step := 0
	switch {
	case prior >= 3:
		step = 2
	case prior >= 1:
		step = 1
	}
	return min(base+Severity(step), SeverityCritical)
}

// identifyGaps evaluates rules in order. A concept flagged by several rules
// keeps its first position and the larger deficit. Result is sorted by
// severity, then rule order.
func identifyGaps(rules []GapRule, a Analysis, p LearnerProfile) []Gap {
	var gaps []Gap
	pos := make(map[string]int)
	for _, r := range rules {
		if p.HasMastered(r.Concept) {
			continue
		}
		deficit, reason, ok := r.Trigger(a)
		if !ok {
			continue
		}
		deficit = min(max(deficit, 0), 1)
		if i, seen := pos[r.Concept]; seen {
			if deficit > gaps[i].deficit {
				gaps[i].deficit, gaps[i].Reason, gaps[i].Category = deficit, reason, r.Category
			}
			continue
		}
		pos[r.Concept] = len(gaps)
		gaps = append(gaps, Gap{Concept: r.Concept, Category: r.Category, Reason: reason, deficit: deficit})
	}
	for i := range gaps {
		prior := p.Occurrences(gaps[i].Concept)
		gaps[i].Occurrences = prior
		gaps[i].Severity = Escalate(baseSeverity(gaps[i].deficit), prior)
	}
	sortStable(gaps, func(x, y Gap) bool { return x.Severity > y.Severity })
	return gaps
}
