package recommend

import (
	"fmt"
	"sort"
	"strings"

	"codecoach/internal/complexity"
)

// Analysis is the part of an analysis bundle the synthesizer reads.
type Analysis struct {
	ProblemTitle    string
	Patterns        []string
	Algorithms      []string
	DataStructures  []string
	Time            complexity.Bound
	Space           complexity.Bound
	QualityScore    float64
	ComplexityScore float64
	Issues          []string
	UsesRecursion   bool
}

// Detected reports whether name was found as a pattern, algorithm or data
// structure. "recursion" is detected when the code recurses.
func (a Analysis) Detected(name string) bool {
	if name == "recursion" {
		return a.UsesRecursion
	}
	for _, list := range [][]string{a.Patterns, a.Algorithms, a.DataStructures} {
		for _, n := range list {
			if n == name {
				return true
			}
		}
	}
	return false
}

// detected lists detections in catalog order: patterns, algorithms, then
// data structures.
func (a Analysis) detected() []string {
	out := make([]string, 0, len(a.Patterns)+len(a.Algorithms)+len(a.DataStructures)+1)
	out = append(out, a.Patterns...)
	out = append(out, a.Algorithms...)
	out = append(out, a.DataStructures...)
	if a.UsesRecursion {
		out = append(out, "recursion")
	}
	return out
}

// ConceptRec is a concept the learner should study next.
type ConceptRec struct {
	Concept          string     `json:"concept"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	EstimatedMinutes int        `json:"estimated_time"`
	Priority         string     `json:"priority"`
	Reason           string     `json:"reason,omitempty"`
	Prerequisites    []string   `json:"prerequisites,omitempty"`
	LeadsTo          []string   `json:"leads_to,omitempty"`

	importance float64
}

// Bundle is the recommendation output.
type Bundle struct {
	KnowledgeGaps              []Gap        `json:"knowledge_gaps"`
	ConceptsToLearn            []ConceptRec `json:"concepts_to_learn"`
	ImprovementSuggestions     []string     `json:"improvement_suggestions"`
	PersonalityRecommendations *StyleAdvice `json:"personality_recommendations,omitempty"`
	Correctness                *Correctness `json:"correctness,omitempty"`
	PracticeProblems           []Problem    `json:"practice_problems"`
	Resources                  []Resource   `json:"resources"`
	EstimatedStudyTime         int          `json:"estimated_study_time"`
	Narrative                  string       `json:"narrative"`
}

// Options tunes the synthesizer.
type Options struct {
	// MasteryThreshold in (0,1]; quality below threshold*100 is a gap
	MasteryThreshold float64
	MaxConcepts      int
	MaxProblems      int
	MaxStyleTips     int
}

// DefaultOptions returns the default limits.
func DefaultOptions() Options {
	return Options{
		MasteryThreshold: 0.6,
		MaxConcepts:      5,
		MaxProblems:      6,
		MaxStyleTips:     2,
	}
}

// Synthesizer builds recommendation bundles. It holds no mutable state and
// is safe for concurrent use.
type Synthesizer struct {
	opts  Options
	rules []GapRule
}

// NewSynthesizer creates a synthesizer; zero option fields take defaults.
func NewSynthesizer(opts Options) *Synthesizer {
	def := DefaultOptions()
	if opts.MasteryThreshold <= 0 || opts.MasteryThreshold > 1 {
		opts.MasteryThreshold = def.MasteryThreshold
	}
	if opts.MaxConcepts <= 0 {
		opts.MaxConcepts = def.MaxConcepts
	}
	if opts.MaxProblems <= 0 {
		opts.MaxProblems = def.MaxProblems
	}
	if opts.MaxStyleTips <= 0 {
		opts.MaxStyleTips = def.MaxStyleTips
	}
	return &Synthesizer{opts: opts, rules: GapRules(opts.MasteryThreshold)}
}

var defaultSynthesizer = NewSynthesizer(DefaultOptions())

// Synthesize builds a bundle with the default options. verdict may be nil.
func Synthesize(a Analysis, p LearnerProfile, verdict *Verdict) Bundle {
	return defaultSynthesizer.Synthesize(a, p, verdict)
}

// Synthesize builds a bundle. The profile and verdict are read only.
func (s *Synthesizer) Synthesize(a Analysis, p LearnerProfile, verdict *Verdict) Bundle {
	style := p.Style.Dominant()
	advice := adviceFor(style, a)

	b := Bundle{
		KnowledgeGaps:              identifyGaps(s.rules, a, p),
		PersonalityRecommendations: advice,
	}
	if verdict.Valid() {
		b.Correctness = correctnessSection(verdict)
	}
	b.ConceptsToLearn = s.concepts(a, p, b.KnowledgeGaps)
	b.Resources = resources(b.ConceptsToLearn)
	b.PracticeProblems = s.problems(b.KnowledgeGaps)
	b.ImprovementSuggestions = s.suggestions(a, b.KnowledgeGaps, b.Correctness, advice)
	for _, c := range b.ConceptsToLearn {
		b.EstimatedStudyTime += c.EstimatedMinutes
	}
	b.Narrative = narrative(a, advice, b.KnowledgeGaps)

	if b.KnowledgeGaps == nil {
		b.KnowledgeGaps = []Gap{}
	}
	if b.ConceptsToLearn == nil {
		b.ConceptsToLearn = []ConceptRec{}
	}
	if b.PracticeProblems == nil {
		b.PracticeProblems = []Problem{}
	}
	if b.Resources == nil {
		b.Resources = []Resource{}
	}
	if b.ImprovementSuggestions == nil {
		b.ImprovementSuggestions = []string{}
	}
	return b
}

func priority(sev Severity, importance float64) string {
	switch {
	case sev >= SeverityHigh && importance > 0.8:
		return "high"
	case sev >= SeverityHigh || importance > 0.7:
		return "medium"
	default:
		return "low"
	}
}

func priorityRank(p string) int {
	switch p {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

func studyMinutes(c Concept, level SkillLevel) int {
	base := c.BaseMinutes
	if base <= 0 {
		base = defaultBaseMinutes
	}
	return int(float64(base) * level.Multiplier())
}

func newRec(c Concept, level SkillLevel, prio, reason string) ConceptRec {
	return ConceptRec{
		Concept:          c.Name,
		Category:         c.Category,
		Difficulty:       c.Difficulty,
		EstimatedMinutes: studyMinutes(c, level),
		Priority:         prio,
		Reason:           reason,
		Prerequisites:    append([]string(nil), c.Prerequisites...),
		LeadsTo:          append([]string(nil), c.LeadsTo...),
		importance:       c.Importance,
	}
}

// concepts ranks gap concepts and the leads_to neighbours of detected
// concepts. For a learner with recorded mastery, unmet prerequisites of a
// gap concept are recommended in its place.
func (s *Synthesizer) concepts(a Analysis, p LearnerProfile, gaps []Gap) []ConceptRec {
	var recs []ConceptRec
	seen := make(map[string]bool)
	add := func(r ConceptRec) {
		if seen[r.Concept] || p.HasMastered(r.Concept) {
			return
		}
		seen[r.Concept] = true
		recs = append(recs, r)
	}
	level := p.level()
	tracked := len(p.Mastered) > 0

	for _, g := range gaps {
		c, ok := LookupConcept(g.Concept)
		if !ok {
			continue
		}
		var unmet []string
		if tracked {
			for _, pre := range c.Prerequisites {
				if !p.HasMastered(pre) && !a.Detected(pre) {
					unmet = append(unmet, pre)
				}
			}
		}
		if len(unmet) == 0 {
			add(newRec(c, level, priority(g.Severity, c.Importance), g.Reason))
			continue
		}
		for _, pre := range unmet {
			if pc, ok := LookupConcept(pre); ok {
				add(newRec(pc, level, "high", "Prerequisite for "+g.Concept))
			}
		}
	}

	for _, d := range a.detected() {
		c, ok := LookupConcept(d)
		if !ok {
			continue
		}
		for _, next := range c.LeadsTo {
			if a.Detected(next) {
				continue
			}
			if nc, ok := LookupConcept(next); ok {
				add(newRec(nc, level, priority(SeverityLow, nc.Importance), "Builds on "+d))
			}
		}
	}

	sortStable(recs, func(x, y ConceptRec) bool {
		if rx, ry := priorityRank(x.Priority), priorityRank(y.Priority); rx != ry {
			return rx > ry
		}
		return x.importance > y.importance
	})
	if len(recs) > s.opts.MaxConcepts {
		recs = recs[:s.opts.MaxConcepts]
	}
	return recs
}

// resources picks up to two resources per concept, at most one level above
// the concept's difficulty.
func resources(recs []ConceptRec) []Resource {
	var out []Resource
	for _, r := range recs {
		n := 0
		for _, res := range Resources[r.Concept] {
			if n == 2 {
				break
			}
			if res.Difficulty.rank() > r.Difficulty.rank()+1 {
				continue
			}
			res.Concept = r.Concept
			out = append(out, res)
			n++
		}
	}
	return out
}

func (s *Synthesizer) problems(gaps []Gap) []Problem {
	var out []Problem
	seen := make(map[string]bool)
	for _, g := range gaps {
		for _, pr := range Problems[g.Concept] {
			if seen[pr.Title] {
				continue
			}
			seen[pr.Title] = true
			pr.Concept = g.Concept
			out = append(out, pr)
			if len(out) == s.opts.MaxProblems {
				return out
			}
		}
	}
	return out
}

var gapSuggestions = map[string]string{
	"two_pointers":        "Learn the two pointers technique to optimize array problems",
	"dynamic_programming": "Study dynamic programming patterns to solve optimization problems",
	"memoization":         "Study dynamic programming patterns to solve optimization problems",
	"hash_table":          "Use hash tables for O(1) lookups and to avoid nested loops",
	"space_optimization":  "Reuse rolling rows or in-place updates instead of a full 2-D table",
	"code_quality":        "Split long or deeply nested functions into smaller, well-named helpers",
}

func complexitySuggestions(a Analysis) []string {
	switch {
	case a.Time.AtLeast(complexity.O2N):
		return []string{"Cache results of overlapping subproblems to avoid exponential recomputation"}
	case a.Time.AtLeast(complexity.ON2):
		return []string{"Consider using hash tables or two pointers to reduce time complexity"}
	}
	return nil
}

// suggestions orders improvement suggestions: correctness findings, then
// analysis findings, then gap advice, then style tips. Duplicates keep
// their first position.
func (s *Synthesizer) suggestions(a Analysis, gaps []Gap, c *Correctness, advice *StyleAdvice) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(items ...string) {
		for _, it := range items {
			it = strings.TrimSpace(it)
			if it == "" || seen[it] {
				continue
			}
			seen[it] = true
			out = append(out, it)
		}
	}
	if c != nil {
		add(c.suggestions()...)
	}
	add(complexitySuggestions(a)...)
	add(a.Issues...)
	for _, g := range gaps {
		if text, ok := gapSuggestions[g.Concept]; ok {
			add(text)
		}
	}
	tips := advice.Tips
	if len(tips) > s.opts.MaxStyleTips {
		tips = tips[:s.opts.MaxStyleTips]
	}
	add(tips...)
	return out
}

func narrative(a Analysis, advice *StyleAdvice, gaps []Gap) string {
	var sb strings.Builder
	subject := "Your solution"
	if a.ProblemTitle != "" {
		subject = a.ProblemTitle + ": your solution"
	}
	fmt.Fprintf(&sb, "%s runs in %s time and %s space with a quality score of %.0f/100.",
		subject, a.Time, a.Space, a.QualityScore)
	if len(gaps) > 0 {
		fmt.Fprintf(&sb, " Next focus: %s (%s).", strings.ReplaceAll(gaps[0].Concept, "_", " "), gaps[0].Severity)
	}
	if advice != nil && advice.Feedback != "" {
		sb.WriteString(" ")
		sb.WriteString(advice.Feedback)
	}
	return sb.String()
}

func sortStable[T any](s []T, less func(x, y T) bool) {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
}
