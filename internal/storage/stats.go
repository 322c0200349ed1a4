package storage

import (
	"context"
	"database/sql"
	"math"
	"slices"
	"strings"
	"time"

	"codecoach/internal/complexity"
)

// LanguageStats aggregates a learner's submissions in one language.
type LanguageStats struct {
	Language        string  `json:"language"`
	Submissions     int64   `json:"submissions"`
	AvgQuality      float64 `json:"avg_quality"`
	BestQuality     float64 `json:"best_quality"`
	AvgComplexity   float64 `json:"avg_complexity"`
	DistinctSources int64   `json:"distinct_sources"`
}

// ComplexityPerformance is the quality reached at one time complexity.
type ComplexityPerformance struct {
	TimeComplexity complexity.Bound `json:"time_complexity"`
	Attempts       int64            `json:"attempts"`
	AvgQuality     float64          `json:"avg_quality"`
}

// Trend compares the older half of a learner's submissions with the recent
// half, oldest half rounded down.
type Trend struct {
	ByTimeComplexity []ComplexityPerformance `json:"by_time_complexity"`
	OlderAvgQuality  float64                 `json:"older_avg_quality"`
	RecentAvgQuality float64                 `json:"recent_avg_quality"`
	Improvement      float64                 `json:"improvement"`
}

// MinTrendSubmissions is the fewest submissions a Trend is computed from.
const MinTrendSubmissions = 3

// LearnerStats summarizes a learner's progress.
type LearnerStats struct {
	UserID      string          `json:"user_id"`
	SkillLevel  string          `json:"skill_level,omitempty"`
	Submissions int64           `json:"submissions"`
	AvgQuality  float64         `json:"avg_quality"`
	Languages   []LanguageStats `json:"languages"`
	Trend       *Trend          `json:"trend,omitempty"`
	LastSeen    *time.Time      `json:"last_seen,omitempty"`
}

// Stats aggregates the learner's submissions since the given time. A zero
// since covers all submissions.
func (s *Store) Stats(ctx context.Context, userID string, since time.Time) (*LearnerStats, error) {
	from := since.UTC().Format(timeLayout)
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT
			language,
			COUNT(*) AS submissions,
			AVG(quality_score) AS avg_quality,
			MAX(quality_score) AS best_quality,
			AVG(complexity_score) AS avg_complexity,
			COUNT(DISTINCT fingerprint) AS distinct_sources
		FROM submissions
		WHERE user_id = ? AND submitted_at >= ?
		GROUP BY language
		ORDER BY language
	`, userID, from)
	if err != nil {
		return nil, storeErr("failed to aggregate submissions", err)
	}
	defer rows.Close()

	stats := &LearnerStats{UserID: userID, Languages: []LanguageStats{}}
	var qualitySum float64
	for rows.Next() {
		var ls LanguageStats
		if err := rows.Scan(&ls.Language, &ls.Submissions, &ls.AvgQuality, &ls.BestQuality,
			&ls.AvgComplexity, &ls.DistinctSources); err != nil {
			return nil, storeErr("failed to scan aggregate", err)
		}
		stats.Languages = append(stats.Languages, ls)
		stats.Submissions += ls.Submissions
		qualitySum += ls.AvgQuality * float64(ls.Submissions)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to aggregate submissions", err)
	}
	if stats.Submissions > 0 {
		stats.AvgQuality = qualitySum / float64(stats.Submissions)
	}

	var level sql.NullString
	err = s.db.conn.QueryRowContext(ctx, "SELECT skill_level FROM learners WHERE user_id = ?", userID).Scan(&level)
	if err != nil && err != sql.ErrNoRows {
		return nil, storeErr("failed to read skill level", err)
	}
	stats.SkillLevel = level.String

	if stats.Trend, err = s.trend(ctx, userID, from); err != nil {
		return nil, err
	}

	var last sql.NullString
	if err := s.db.conn.QueryRowContext(ctx,
		"SELECT MAX(submitted_at) FROM submissions WHERE user_id = ? AND submitted_at >= ?", userID, from,
	).Scan(&last); err != nil {
		return nil, storeErr("failed to read last submission", err)
	}
	if last.Valid {
		if t, err := time.Parse(timeLayout, last.String); err == nil {
			stats.LastSeen = &t
		}
	}
	return stats, nil
}

// trend splits the submissions since from, oldest first, at their midpoint.
// It returns nil below MinTrendSubmissions.
func (s *Store) trend(ctx context.Context, userID, from string) (*Trend, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT time_complexity, quality_score
		FROM submissions
		WHERE user_id = ? AND submitted_at >= ?
		ORDER BY submitted_at, id
	`, userID, from)
	if err != nil {
		return nil, storeErr("failed to read submission trend", err)
	}
	defer rows.Close()

	var bounds []complexity.Bound
	var scores []float64
	for rows.Next() {
		var class string
		var q float64
		if err := rows.Scan(&class, &q); err != nil {
			return nil, storeErr("failed to scan submission trend", err)
		}
		// unknown strings decode as Unknown
		b, _ := complexity.ParseBound(class)
		bounds = append(bounds, b)
		scores = append(scores, q)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read submission trend", err)
	}
	if len(scores) < MinTrendSubmissions {
		return nil, nil
	}

	mid := len(scores) / 2
	older, recent := mean(scores[:mid]), mean(scores[mid:])
	t := &Trend{
		OlderAvgQuality:  round2(older),
		RecentAvgQuality: round2(recent),
		Improvement:      round2(recent - older),
	}

	byBound := map[string]*ComplexityPerformance{}
	sums := map[string]float64{}
	for i, b := range bounds {
		key := b.String()
		cp, ok := byBound[key]
		if !ok {
			cp = &ComplexityPerformance{TimeComplexity: b}
			byBound[key] = cp
		}
		cp.Attempts++
		sums[key] += scores[i]
	}
	for key, cp := range byBound {
		cp.AvgQuality = round2(sums[key] / float64(cp.Attempts))
		t.ByTimeComplexity = append(t.ByTimeComplexity, *cp)
	}
	slices.SortFunc(t.ByTimeComplexity, func(a, b ComplexityPerformance) int {
		switch {
		case a.TimeComplexity.Less(b.TimeComplexity):
			return -1
		case b.TimeComplexity.Less(a.TimeComplexity):
			return 1
		}
		return strings.Compare(a.TimeComplexity.String(), b.TimeComplexity.String())
	})
	return t, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
