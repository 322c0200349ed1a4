package main

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"codecoach/internal/engine"
	"codecoach/internal/recommend"
	"codecoach/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
	FormatTOML  OutputFormat = "toml"
)

// FormatResponse formats a response according to the specified format.
// YAML and TOML output use the JSON field names.
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatTOML:
		return formatTOML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// generic round-trips resp through JSON so every encoder sees the same keys.
// Nulls are dropped since TOML cannot represent them.
func generic(resp interface{}) (interface{}, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return dropNulls(v), nil
}

func dropNulls(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			if e == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(e)
		}
	case []interface{}:
		out := t[:0]
		for _, e := range t {
			if e != nil {
				out = append(out, dropNulls(e))
			}
		}
		return out
	}
	return v
}

func formatYAML(resp interface{}) (string, error) {
	v, err := generic(resp)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func formatTOML(resp interface{}) (string, error) {
	v, err := generic(resp)
	if err != nil {
		return "", err
	}
	// TOML documents are tables
	if _, ok := v.(map[string]interface{}); !ok {
		v = map[string]interface{}{"items": v}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal TOML: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *engine.Response:
		return formatAnalysisHuman(v), nil
	case []FileResult:
		return formatFileResultsHuman(v), nil
	case recommend.LearnerProfile:
		return formatProfileHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *storage.SubmissionDetail:
		return formatSubmissionHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatAnalysisHuman(resp *engine.Response) string {
	var b strings.Builder
	a, r := resp.Analysis, resp.Recommendations

	if resp.Degraded != nil {
		b.WriteString(fmt.Sprintf("! %s: %s\n\n", resp.Degraded.Code, resp.Degraded.Message))
	}

	b.WriteString("Analysis\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("  Time:       %s\n", a.TimeComplexity))
	b.WriteString(fmt.Sprintf("  Space:      %s\n", a.SpaceComplexity))
	b.WriteString(fmt.Sprintf("  Quality:    %.1f / 100\n", a.QualityScore))
	b.WriteString(fmt.Sprintf("  Complexity: %.1f / 100\n", a.ComplexityScore))
	writeList(&b, "Patterns", a.Patterns)
	writeList(&b, "Algorithms", a.Algorithms)
	writeList(&b, "Data structures", a.DataStructures)
	writeBullets(&b, "Issues", a.Issues)

	if c := r.Correctness; c != nil {
		b.WriteString("\nCorrectness\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
		if c.IsCorrect {
			b.WriteString("  Looks correct\n")
		} else {
			b.WriteString("  Problems found\n")
		}
		for _, e := range c.Errors {
			b.WriteString(fmt.Sprintf("  - [%s] %s\n", e.Category, e.Message))
		}
	}

	b.WriteString("\nRecommendations\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	if len(r.KnowledgeGaps) > 0 {
		b.WriteString("  Knowledge gaps:\n")
		for _, g := range r.KnowledgeGaps {
			b.WriteString(fmt.Sprintf("    - %s (%s): %s\n", g.Concept, g.Severity, g.Reason))
		}
	}
	if len(r.ConceptsToLearn) > 0 {
		b.WriteString("  Concepts to learn:\n")
		for _, c := range r.ConceptsToLearn {
			b.WriteString(fmt.Sprintf("    - %s [%s, %s, ~%dm]\n", c.Concept, c.Priority, c.Difficulty, c.EstimatedMinutes))
		}
	}
	writeBullets(&b, "Suggestions", r.ImprovementSuggestions)
	if p := r.PersonalityRecommendations; p != nil {
		b.WriteString(fmt.Sprintf("  %s:\n    %s\n", p.Name, p.Feedback))
		for _, tip := range p.Tips {
			b.WriteString(fmt.Sprintf("    * %s\n", tip))
		}
	}
	if len(r.PracticeProblems) > 0 {
		b.WriteString("  Practice:\n")
		for _, p := range r.PracticeProblems {
			b.WriteString(fmt.Sprintf("    - %s (%s) %s\n", p.Title, p.Difficulty, p.URL))
		}
	}
	b.WriteString(fmt.Sprintf("  Estimated study time: %d minutes\n", r.EstimatedStudyTime))
	if r.Narrative != "" {
		b.WriteString("\n" + r.Narrative + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFileResultsHuman(results []FileResult) string {
	var parts []string
	for _, res := range results {
		header := res.File + "\n" + strings.Repeat("-", len(res.File)) + "\n"
		if res.Error != nil {
			parts = append(parts, header+"Error: "+res.Error.Error())
			continue
		}
		parts = append(parts, header+formatAnalysisHuman(res.Response))
	}
	return strings.Join(parts, "\n\n")
}

func formatProfileHuman(p recommend.LearnerProfile) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Style:       %s\n", p.Style.Dominant()))
	b.WriteString(fmt.Sprintf("  analytical=%.2f creative=%.2f practical=%.2f collaborative=%.2f\n",
		p.Style.Analytical, p.Style.Creative, p.Style.Practical, p.Style.Collaborative))
	if p.SkillLevel != "" {
		b.WriteString(fmt.Sprintf("Skill level: %s\n", p.SkillLevel))
	}
	if len(p.PriorGaps) > 0 {
		b.WriteString("Recurring gaps:\n")
		for _, concept := range sortedKeys(p.PriorGaps) {
			b.WriteString(fmt.Sprintf("  - %s x%d\n", concept, p.PriorGaps[concept]))
		}
	}
	writeList(&b, "Mastered", p.Mastered)
	return strings.TrimRight(b.String(), "\n")
}

func formatHistoryHuman(h *HistoryResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %d submissions, average quality %.1f\n",
		h.Stats.UserID, h.Stats.Submissions, h.Stats.AvgQuality))
	if h.Stats.SkillLevel != "" {
		b.WriteString(fmt.Sprintf("  level      %s\n", h.Stats.SkillLevel))
	}
	for _, l := range h.Stats.Languages {
		b.WriteString(fmt.Sprintf("  %-10s %3d  avg %.1f\n", l.Language, l.Submissions, l.AvgQuality))
	}
	if tr := h.Stats.Trend; tr != nil {
		b.WriteString(fmt.Sprintf("\nTrend: older avg %.1f, recent avg %.1f (%+.1f)\n",
			tr.OlderAvgQuality, tr.RecentAvgQuality, tr.Improvement))
		for _, c := range tr.ByTimeComplexity {
			b.WriteString(fmt.Sprintf("  %-10s %3d  avg %.1f\n", c.TimeComplexity, c.Attempts, c.AvgQuality))
		}
	}
	if len(h.Submissions) > 0 {
		b.WriteString("\nRecent:\n")
		for _, s := range h.Submissions {
			b.WriteString(fmt.Sprintf("  %s  %s  %-30s %-10s %s/%s  q=%.0f\n",
				s.SubmittedAt.Format("2006-01-02 15:04"), s.ID, truncate(s.ProblemTitle, 30), s.Language,
				s.Time, s.Space, s.QualityScore))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSubmissionHuman(s *storage.SubmissionDetail) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s (%s)\n", s.ID, s.ProblemTitle, s.Language))
	b.WriteString(fmt.Sprintf("  submitted  %s\n", s.SubmittedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("  time       %s\n  space      %s\n", s.Time, s.Space))
	b.WriteString(fmt.Sprintf("  quality    %.0f\n", s.QualityScore))
	writeList(&b, "patterns", s.Patterns)
	writeList(&b, "gaps", s.Gaps)
	b.WriteString("\n" + s.Code)
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("  %s: %s\n", label, strings.Join(items, ", ")))
}

func writeBullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("  %s:\n", label))
	for _, it := range items {
		b.WriteString(fmt.Sprintf("    - %s\n", it))
	}
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
