package recommend

import "strings"

// ErrorCategory classifies a correctness finding.
type ErrorCategory string

const (
	CategorySyntax       ErrorCategory = "syntax"
	CategoryRuntime      ErrorCategory = "runtime"
	CategoryLogic        ErrorCategory = "logic"
	CategoryPerformance  ErrorCategory = "performance"
	CategoryBestPractice ErrorCategory = "best_practice"
)

// CategoryOrder is the order findings appear in suggestions.
var CategoryOrder = []ErrorCategory{
	CategorySyntax,
	CategoryRuntime,
	CategoryLogic,
	CategoryPerformance,
	CategoryBestPractice,
}

// Solution is a suggested fix for one issue.
type Solution struct {
	Issue         string `json:"issue"`
	Solution      string `json:"solution"`
	Explanation   string `json:"explanation,omitempty"`
	CorrectedCode string `json:"corrected_code,omitempty"`
}

// Verdict is an externally produced correctness judgment.
type Verdict struct {
	IsCorrect              bool       `json:"is_correct"`
	SyntaxErrors           []string   `json:"syntax_errors,omitempty"`
	LogicErrors            []string   `json:"logic_errors,omitempty"`
	RuntimeErrors          []string   `json:"runtime_errors,omitempty"`
	PerformanceIssues      []string   `json:"performance_issues,omitempty"`
	BestPracticeViolations []string   `json:"best_practice_violations,omitempty"`
	Solutions              []Solution `json:"solutions,omitempty"`
	OverallAssessment      string     `json:"overall_assessment,omitempty"`
}

// Errors returns the findings of one category with blank entries dropped.
func (v *Verdict) Errors(c ErrorCategory) []string {
	if v == nil {
		return nil
	}
	var src []string
	switch c {
	case CategorySyntax:
		src = v.SyntaxErrors
	case CategoryRuntime:
		src = v.RuntimeErrors
	case CategoryLogic:
		src = v.LogicErrors
	case CategoryPerformance:
		src = v.PerformanceIssues
	case CategoryBestPractice:
		src = v.BestPracticeViolations
	}
	var out []string
	for _, e := range src {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (v *Verdict) solutions() []Solution {
	var out []Solution
	for _, s := range v.Solutions {
		if strings.TrimSpace(s.Issue) != "" || strings.TrimSpace(s.Solution) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Valid reports whether the verdict carries a judgment. A nil verdict, or
// one with no findings, no solutions, no assessment and no positive
// outcome, is malformed and treated as absent.
func (v *Verdict) Valid() bool {
	if v == nil {
		return false
	}
	if v.IsCorrect || strings.TrimSpace(v.OverallAssessment) != "" || len(v.solutions()) > 0 {
		return true
	}
	for _, c := range CategoryOrder {
		if len(v.Errors(c)) > 0 {
			return true
		}
	}
	return false
}

// CategorizedError is one finding with its category.
type CategorizedError struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
}

// Correctness is the bundle section built from a valid verdict.
type Correctness struct {
	IsCorrect         bool               `json:"is_correct"`
	Errors            []CategorizedError `json:"errors,omitempty"`
	Solutions         []Solution         `json:"solutions,omitempty"`
	OverallAssessment string             `json:"overall_assessment,omitempty"`
}

func correctnessSection(v *Verdict) *Correctness {
	c := &Correctness{
		IsCorrect:         v.IsCorrect,
		Solutions:         v.solutions(),
		OverallAssessment: strings.TrimSpace(v.OverallAssessment),
	}
	for _, cat := range CategoryOrder {
		for _, e := range v.Errors(cat) {
			c.Errors = append(c.Errors, CategorizedError{Category: cat, Message: e})
		}
	}
	return c
}

// suggestions derives improvement suggestions: solutions first, then
// findings in category order.
func (c *Correctness) suggestions() []string {
	var out []string
	for _, s := range c.Solutions {
		switch {
		case s.Issue == "":
			out = append(out, s.Solution)
		case s.Solution == "":
			out = append(out, "Fix: "+s.Issue)
		default:
			out = append(out, s.Issue+": "+s.Solution)
		}
	}
	for _, e := range c.Errors {
		out = append(out, "["+string(e.Category)+"] "+e.Message)
	}
	return out
}
