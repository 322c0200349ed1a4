package engine

import (
	"time"

	"codecoach/internal/features"
	"codecoach/internal/recommend"
)

// WithStoredProfile fills the request's learner fields from a stored
// profile. Fields the request sets win; prior gaps and mastered concepts
// are unioned with the request's taking precedence per concept.
func (r Request) WithStoredProfile(p recommend.LearnerProfile) Request {
	if r.LearnerProfile == nil {
		style := p.Style
		r.LearnerProfile = &style
	}
	if r.SkillLevel == "" {
		r.SkillLevel = string(p.SkillLevel)
	}

	if len(p.PriorGaps) > 0 {
		merged := make(map[string]int, len(p.PriorGaps)+len(r.PriorGaps))
		for k, v := range p.PriorGaps {
			merged[k] = v
		}
		for k, v := range r.PriorGaps {
			merged[k] = v
		}
		r.PriorGaps = merged
	}

	if len(p.Mastered) > 0 {
		seen := make(map[string]bool, len(r.Mastered))
		mastered := make([]string, 0, len(p.Mastered)+len(r.Mastered))
		for _, list := range [][]string{r.Mastered, p.Mastered} {
			for _, m := range list {
				if !seen[m] {
					seen[m] = true
					mastered = append(mastered, m)
				}
			}
		}
		r.Mastered = mastered
	}
	return r
}

// NewSubmission describes an analyzed request for a SubmissionRecorder.
// The language is stored under its canonical tag.
func NewSubmission(req Request, resp *Response, at time.Time) recommend.Submission {
	a := resp.Analysis
	lang := req.Language
	if l, ok := features.ParseLanguage(lang); ok {
		lang = string(l)
	}
	return recommend.Submission{
		Language:        lang,
		ProblemTitle:    req.ProblemTitle,
		Code:            req.Code,
		Time:            a.TimeComplexity,
		Space:           a.SpaceComplexity,
		QualityScore:    a.QualityScore,
		ComplexityScore: a.ComplexityScore,
		Patterns:        append(append(append([]string{}, a.Patterns...), a.Algorithms...), a.DataStructures...),
		Gaps:            resp.Recommendations.GapConcepts(),
		SubmittedAt:     at,
	}
}
