package storage

import (
	"context"
	"database/sql"
	"time"

	"codecoach/internal/recommend"
)

// Promotion is a skill-level step earned from recent scores: both averages
// over the PromotionWindow must exceed the thresholds.
type Promotion struct {
	From          recommend.SkillLevel
	To            recommend.SkillLevel
	MinQuality    float64
	MinComplexity float64
}

// Promotions are checked in order against the learner's current level.
var Promotions = []Promotion{
	{From: recommend.Beginner, To: recommend.Intermediate, MinQuality: 70, MinComplexity: 60},
	{From: recommend.Intermediate, To: recommend.Advanced, MinQuality: 85, MinComplexity: 80},
}

const (
	// PromotionWindow is how far back scores count towards a promotion.
	PromotionWindow = 30 * 24 * time.Hour

	// MinPromotionSubmissions is the fewest recent submissions a promotion
	// is decided on.
	MinPromotionSubmissions = 3
)

// EvaluateSkillLevel promotes the learner one level when the averages of
// their recent submissions clear the next Promotion. It reports the level
// after evaluation and whether it changed. Levels are never lowered.
func (s *Store) EvaluateSkillLevel(ctx context.Context, userID string) (recommend.SkillLevel, bool, error) {
	var level recommend.SkillLevel
	var promoted bool
	now := s.now()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, "SELECT skill_level FROM learners WHERE user_id = ?", userID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return storeErr("failed to read skill level", err)
		}
		level = recommend.SkillLevel(current)

		var n int64
		var quality, complexityScore sql.NullFloat64
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*), AVG(quality_score), AVG(complexity_score)
			FROM submissions
			WHERE user_id = ? AND submitted_at >= ?
		`, userID, now.Add(-PromotionWindow).UTC().Format(timeLayout)).Scan(&n, &quality, &complexityScore); err != nil {
			return storeErr("failed to average recent scores", err)
		}
		if n < MinPromotionSubmissions {
			return nil
		}

		for _, p := range Promotions {
			if p.From != level || quality.Float64 <= p.MinQuality || complexityScore.Float64 <= p.MinComplexity {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE learners SET skill_level = ?, updated_at = ? WHERE user_id = ?
			`, string(p.To), now.UTC().Format(timeLayout), userID); err != nil {
				return storeErr("failed to promote learner", err)
			}
			level, promoted = p.To, true
			break
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if promoted {
		s.db.logger.Info("Promoted learner", "user", userID, "level", string(level))
	}
	return level, promoted, nil
}
