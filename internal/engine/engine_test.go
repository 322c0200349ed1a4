package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"codecoach/internal/complexity"
	"codecoach/internal/config"
	"codecoach/internal/correctness"
	"codecoach/internal/errors"
	"codecoach/internal/recommend"
)

const twoSum = "def two_sum(nums, target):\n  m={}\n  for i,n in enumerate(nums):\n    c=target-n\n    if c in m: return [m[c], i]\n    m[n]=i\n  return []"

func newTestEngine(t *testing.T, checker correctness.Checker) *Engine {
	t.Helper()
	e, err := NewEngine(config.DefaultConfig(), checker, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestAnalyzeTwoSum(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Analyze(context.Background(), Request{
		Code:         twoSum,
		Language:     "python",
		ProblemTitle: "Two Sum",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	a := resp.Analysis
	if a.TimeComplexity != complexity.ON {
		t.Errorf("time = %v, want O(n)", a.TimeComplexity)
	}
	if a.SpaceComplexity != complexity.ON {
		t.Errorf("space = %v, want O(n)", a.SpaceComplexity)
	}
	if !hasMatch(a, "hash_table") {
		t.Errorf("matches = %v, want hash_table", a.Matches)
	}
	if a.QualityScore <= 0 {
		t.Errorf("quality = %v, want > 0", a.QualityScore)
	}
	if resp.Degraded != nil {
		t.Errorf("Degraded = %+v, want nil", resp.Degraded)
	}
	if resp.Recommendations.Correctness != nil {
		t.Error("correctness section present without a checker")
	}
	if resp.Recommendations.PersonalityRecommendations == nil {
		t.Error("missing personality recommendations")
	}
}

func TestAnalyzeEmptySource(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Analyze(context.Background(), Request{Language: "go", ProblemTitle: "Empty"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	a := resp.Analysis
	if a.TimeComplexity.Known() {
		t.Errorf("time = %v, want Unknown", a.TimeComplexity)
	}
	if len(a.Matches) != 0 || len(a.Patterns) != 0 {
		t.Errorf("matches = %v, want none", a.Matches)
	}
	if a.QualityScore < 0 || a.QualityScore > 100 || a.ComplexityScore < 0 || a.ComplexityScore > 100 {
		t.Errorf("scores = %v/%v, want within [0,100]", a.QualityScore, a.ComplexityScore)
	}
}

func TestAnalyzeInvalidRequest(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing title", Request{Code: "x = 1", Language: "python"}, "problem_title"},
		{"missing language", Request{Code: "x = 1", ProblemTitle: "T"}, "language"},
		{"unsupported language", Request{Code: "x", Language: "cobol", ProblemTitle: "T"}, "language"},
		{"negative weight", Request{Language: "go", ProblemTitle: "T",
			LearnerProfile: &recommend.StyleVector{Analytical: -1}}, "learner_profile.analytical"},
		{"negative prior", Request{Language: "go", ProblemTitle: "T",
			PriorGaps: map[string]int{"array": -2}}, "prior_gaps[array]"},
		{"skill level", Request{Language: "go", ProblemTitle: "T", SkillLevel: "guru"}, "skill_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Analyze(context.Background(), tt.req)
			if !errors.Is(err, errors.InvalidRequest) {
				t.Fatalf("err = %v, want INVALID_REQUEST", err)
			}
			fields, _ := errors.From(err).Details.([]FieldError)
			if len(fields) == 0 || fields[0].Field != tt.field {
				t.Errorf("fields = %+v, want %s", fields, tt.field)
			}
		})
	}
}

func TestAnalyzeLanguageAlias(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Analyze(context.Background(), Request{Code: "x = 1", Language: "py", ProblemTitle: "T"}); err != nil {
		t.Errorf("alias rejected: %v", err)
	}
}

func TestAnalyzeTruncates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.MaxSourceBytes = 40
	e, err := NewEngine(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := e.Analyze(context.Background(), Request{
		Code:         strings.Repeat("total = total + 1\n", 50),
		Language:     "python",
		ProblemTitle: "Long",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !resp.Analysis.Truncated {
		t.Error("Truncated = false, want true")
	}
	if resp.Analysis.Metrics.Lines > 3 {
		t.Errorf("lines = %d, want the truncated source only", resp.Analysis.Metrics.Lines)
	}
	if last := resp.Analysis.Issues[len(resp.Analysis.Issues)-1]; last != "source truncated to 40 characters" {
		t.Errorf("last issue = %q", last)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		code  string
		limit int
		want  string
		cut   bool
	}{
		{"abc", 5, "abc", false},
		{"abcdef", 3, "abc", true},
		{"héllo", 2, "hé", true},
		{"abc", 0, "abc", false},
	}
	for _, tt := range tests {
		got, cut := truncate(tt.code, tt.limit)
		if got != tt.want || cut != tt.cut {
			t.Errorf("truncate(%q, %d) = %q, %v; want %q, %v", tt.code, tt.limit, got, cut, tt.want, tt.cut)
		}
	}
}

func TestAnalyzeTimeBudget(t *testing.T) {
	e := newTestEngine(t, nil)
	e.budget = 20 * time.Millisecond
	e.analyze = func(ctx context.Context, _ SourceUnit) AnalysisBundle {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return AnalysisBundle{}
	}

	resp, err := e.Analyze(context.Background(), Request{Code: twoSum, Language: "python", ProblemTitle: "Slow"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Degraded == nil || resp.Degraded.Code != errors.Timeout {
		t.Fatalf("Degraded = %+v, want TIMEOUT", resp.Degraded)
	}
	if resp.Analysis.TimeComplexity.Known() {
		t.Errorf("time = %v, want Unknown", resp.Analysis.TimeComplexity)
	}
	if len(resp.Recommendations.ImprovementSuggestions) == 0 {
		t.Error("degraded response should still carry recommendations")
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.analyze = func(ctx context.Context, _ SourceUnit) AnalysisBundle {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return AnalysisBundle{}
	}

	_, err := e.Analyze(ctx, Request{Code: twoSum, Language: "python", ProblemTitle: "T"})
	if !errors.Is(err, errors.Timeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestAnalyzeCorrectnessFirst(t *testing.T) {
	verdict := &recommend.Verdict{
		LogicErrors: []string{"returns indices in the wrong order"},
		Solutions: []recommend.Solution{
			{Issue: "Index order", Solution: "Return [m[c], i]"},
		},
	}
	e := newTestEngine(t, correctness.Static{Verdict: verdict})

	styles := []recommend.Style{recommend.Analytical, recommend.Creative, recommend.Practical, recommend.Collaborative, recommend.Balanced}
	for _, s := range styles {
		t.Run(string(s), func(t *testing.T) {
			req := Request{Code: twoSum, Language: "python", ProblemTitle: "Two Sum"}
			if s != recommend.Balanced {
				v := recommend.SingleStyle(s)
				req.LearnerProfile = &v
			}
			resp, err := e.Analyze(context.Background(), req)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if resp.Recommendations.Correctness == nil {
				t.Fatal("correctness section missing")
			}
			got := resp.Recommendations.ImprovementSuggestions
			if len(got) == 0 || got[0] != "Index order: Return [m[c], i]" {
				t.Errorf("suggestions = %v, want the solution first", got)
			}
		})
	}
}

func TestAnalyzeCorrectnessTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Correctness.TimeoutMs = 10
	checker := correctness.Static{Verdict: &recommend.Verdict{IsCorrect: true}, Delay: time.Second}
	e, err := NewEngine(cfg, checker, nil)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	resp, err := e.Analyze(context.Background(), Request{Code: twoSum, Language: "python", ProblemTitle: "T"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("Analyze waited %v on a slow checker", time.Since(start))
	}
	if resp.Recommendations.Correctness != nil {
		t.Error("timed-out verdict should be absent")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := newTestEngine(t, nil)
	req := Request{
		Code:           twoSum,
		Language:       "python",
		ProblemTitle:   "Two Sum",
		LearnerProfile: &recommend.StyleVector{Analytical: 0.2, Creative: 0.7},
		PriorGaps:      map[string]int{"two_pointers": 2, "array": 1},
	}

	first, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Analyze(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first", i+1)
		}
	}
}

func TestAnalyzeBatch(t *testing.T) {
	e := newTestEngine(t, nil)
	reqs := []Request{
		{Code: twoSum, Language: "python", ProblemTitle: "Two Sum"},
		{Code: "x = 1", Language: "python"},
		{Code: "func f(n int) int { return n }", Language: "go", ProblemTitle: "Identity"},
	}

	results, err := e.AnalyzeBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	if results[0].Response == nil || results[0].Response.Analysis.TimeComplexity != complexity.ON {
		t.Errorf("result 0 = %+v, want the two_sum analysis", results[0])
	}
	if results[1].Error == nil || results[1].Error.Code != errors.InvalidRequest {
		t.Errorf("result 1 = %+v, want INVALID_REQUEST", results[1])
	}
	if results[2].Response == nil {
		t.Errorf("result 2 = %+v, want a response", results[2])
	}
}

func TestRequestProfile(t *testing.T) {
	req := Request{
		LearnerProfile: &recommend.StyleVector{Practical: 1},
		PriorGaps:      map[string]int{"array": 2},
		Mastered:       []string{"hash_table"},
		SkillLevel:     "beginner",
	}
	p := req.Profile()
	if p.Style.Dominant() != recommend.Practical {
		t.Errorf("dominant = %v, want practical", p.Style.Dominant())
	}
	if p.SkillLevel != recommend.Beginner || p.Occurrences("array") != 2 || !p.HasMastered("hash_table") {
		t.Errorf("profile = %+v", p)
	}
	if (Request{}).Profile().SkillLevel != recommend.Intermediate {
		t.Error("empty skill level should default to intermediate")
	}
}

func hasMatch(a AnalysisBundle, name string) bool {
	for _, m := range a.Matches {
		if m.Name == name {
			return true
		}
	}
	return false
}

func TestWithStoredProfile(t *testing.T) {
	stored := recommend.LearnerProfile{
		Style:      recommend.StyleVector{Creative: 1},
		PriorGaps:  map[string]int{"array": 2, "recursion": 1},
		Mastered:   []string{"stack"},
		SkillLevel: recommend.Advanced,
	}

	req := Request{
		PriorGaps: map[string]int{"array": 5},
		Mastered:  []string{"queue", "stack"},
	}.WithStoredProfile(stored)

	if req.LearnerProfile == nil || req.LearnerProfile.Creative != 1 {
		t.Errorf("LearnerProfile = %+v, want stored style", req.LearnerProfile)
	}
	if req.SkillLevel != "advanced" {
		t.Errorf("SkillLevel = %q, want advanced", req.SkillLevel)
	}
	if !reflect.DeepEqual(req.PriorGaps, map[string]int{"array": 5, "recursion": 1}) {
		t.Errorf("PriorGaps = %v", req.PriorGaps)
	}
	if !reflect.DeepEqual(req.Mastered, []string{"queue", "stack"}) {
		t.Errorf("Mastered = %v", req.Mastered)
	}

	own := recommend.StyleVector{Practical: 1}
	req = Request{LearnerProfile: &own, SkillLevel: "beginner"}.WithStoredProfile(stored)
	if req.LearnerProfile.Practical != 1 || req.SkillLevel != "beginner" {
		t.Errorf("request fields should win: %+v", req)
	}
}

func TestCatalog(t *testing.T) {
	c := newTestEngine(t, nil).Catalog()
	if len(c.Languages) != 5 || len(c.Styles) != 4 {
		t.Errorf("languages = %v, styles = %v", c.Languages, c.Styles)
	}
	if len(c.Detections) == 0 || c.Detections[0].Name != "two_pointers" {
		t.Errorf("detections should follow catalog order, got %v", c.Detections)
	}
	if len(c.Concepts) != len(recommend.KnowledgeGraph) {
		t.Errorf("concepts = %d, want %d", len(c.Concepts), len(recommend.KnowledgeGraph))
	}
	if c.ComplexityClasses[len(c.ComplexityClasses)-1] != "Unknown" {
		t.Errorf("classes = %v", c.ComplexityClasses)
	}
}

func TestNewSubmission(t *testing.T) {
	e := newTestEngine(t, nil)
	req := Request{Code: twoSum, Language: "py", ProblemTitle: "Two Sum"}
	resp, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := NewSubmission(req, resp, at)
	if sub.Language != "python" {
		t.Errorf("language = %q, want canonical python", sub.Language)
	}
	if sub.Time != resp.Analysis.TimeComplexity || !sub.SubmittedAt.Equal(at) {
		t.Errorf("submission = %+v", sub)
	}
	if len(sub.Patterns) != len(resp.Analysis.Patterns)+len(resp.Analysis.Algorithms)+len(resp.Analysis.DataStructures) {
		t.Errorf("patterns = %v", sub.Patterns)
	}
}
