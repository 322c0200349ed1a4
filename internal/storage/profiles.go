package storage

import (
	"context"
	"database/sql"
	"time"

	"codecoach/internal/errors"
	"codecoach/internal/recommend"
)

// Store is the SQLite-backed recommend.ProfileStore and
// recommend.SubmissionRecorder.
type Store struct {
	db  *DB
	now func() time.Time
}

var (
	_ recommend.ProfileStore       = (*Store)(nil)
	_ recommend.SubmissionRecorder = (*Store)(nil)
)

// NewStore creates a store over db.
func NewStore(db *DB) *Store {
	return &Store{db: db, now: time.Now}
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func storeErr(op string, err error) error {
	return errors.New(errors.StoreUnavailable, op, err)
}

// LoadProfile returns the learner's profile, or PROFILE_NOT_FOUND.
func (s *Store) LoadProfile(ctx context.Context, userID string) (recommend.LearnerProfile, error) {
	var p recommend.LearnerProfile
	var level string
	err := s.db.conn.QueryRowContext(ctx, `
		SELECT analytical, creative, practical, collaborative, skill_level
		FROM learners WHERE user_id = ?
	`, userID).Scan(&p.Style.Analytical, &p.Style.Creative, &p.Style.Practical, &p.Style.Collaborative, &level)
	if err == sql.ErrNoRows {
		return p, errors.Newf(errors.ProfileNotFound, "no profile for user %q", userID)
	}
	if err != nil {
		return p, storeErr("failed to load profile", err)
	}
	p.SkillLevel = recommend.SkillLevel(level)

	gaps, err := s.db.conn.QueryContext(ctx, `
		SELECT concept, occurrences FROM learner_gaps
		WHERE user_id = ? ORDER BY concept
	`, userID)
	if err != nil {
		return p, storeErr("failed to load gaps", err)
	}
	defer gaps.Close()
	for gaps.Next() {
		var concept string
		var n int
		if err := gaps.Scan(&concept, &n); err != nil {
			return p, storeErr("failed to scan gap", err)
		}
		if p.PriorGaps == nil {
			p.PriorGaps = make(map[string]int)
		}
		p.PriorGaps[concept] = n
	}
	if err := gaps.Err(); err != nil {
		return p, storeErr("failed to load gaps", err)
	}

	mastered, err := s.db.conn.QueryContext(ctx, `
		SELECT concept FROM learner_mastery
		WHERE user_id = ? ORDER BY concept
	`, userID)
	if err != nil {
		return p, storeErr("failed to load mastery", err)
	}
	defer mastered.Close()
	for mastered.Next() {
		var concept string
		if err := mastered.Scan(&concept); err != nil {
			return p, storeErr("failed to scan mastery", err)
		}
		p.Mastered = append(p.Mastered, concept)
	}
	if err := mastered.Err(); err != nil {
		return p, storeErr("failed to load mastery", err)
	}
	return p, nil
}

// SaveProfile replaces the learner's profile, gap tallies and mastered set.
func (s *Store) SaveProfile(ctx context.Context, userID string, p recommend.LearnerProfile) error {
	if userID == "" {
		return errors.Newf(errors.InvalidRequest, "user id is required")
	}
	level, err := recommend.ParseSkillLevel(string(p.SkillLevel))
	if err != nil {
		return errors.New(errors.InvalidRequest, "invalid profile", err)
	}
	for _, st := range recommend.Styles {
		if p.Style.Weight(st) < 0 {
			return errors.Newf(errors.InvalidRequest, "%s weight must not be negative", st)
		}
	}

	now := s.timestamp()
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO learners (user_id, analytical, creative, practical, collaborative, skill_level, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				analytical = excluded.analytical,
				creative = excluded.creative,
				practical = excluded.practical,
				collaborative = excluded.collaborative,
				skill_level = excluded.skill_level,
				updated_at = excluded.updated_at
		`, userID, p.Style.Analytical, p.Style.Creative, p.Style.Practical, p.Style.Collaborative, string(level), now, now); err != nil {
			return storeErr("failed to save learner", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM learner_gaps WHERE user_id = ?", userID); err != nil {
			return storeErr("failed to reset gaps", err)
		}
		for concept, n := range p.PriorGaps {
			if n <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO learner_gaps (user_id, concept, occurrences, last_seen_at) VALUES (?, ?, ?, ?)
			`, userID, concept, n, now); err != nil {
				return storeErr("failed to save gap", err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM learner_mastery WHERE user_id = ?", userID); err != nil {
			return storeErr("failed to reset mastery", err)
		}
		for _, concept := range p.Mastered {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO learner_mastery (user_id, concept, mastered_at) VALUES (?, ?, ?)
			`, userID, concept, now); err != nil {
				return storeErr("failed to save mastery", err)
			}
		}
		return nil
	})
}

// RecordGaps increments the tally of every concept flagged by an analysis,
// creating the learner with neutral weights if needed. Mastered concepts
// are skipped.
func (s *Store) RecordGaps(ctx context.Context, userID string, concepts []string) error {
	now := s.timestamp()
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ensureLearner(ctx, tx, userID, now); err != nil {
			return err
		}
		for _, concept := range concepts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO learner_gaps (user_id, concept, occurrences, last_seen_at)
				SELECT ?, ?, 1, ?
				WHERE NOT EXISTS (SELECT 1 FROM learner_mastery WHERE user_id = ? AND concept = ?)
				ON CONFLICT(user_id, concept) DO UPDATE SET
					occurrences = occurrences + 1,
					last_seen_at = excluded.last_seen_at
			`, userID, concept, now, userID, concept); err != nil {
				return storeErr("failed to record gap", err)
			}
		}
		return nil
	})
}

// MarkMastered moves concepts into the mastered set and clears their gap
// tallies.
func (s *Store) MarkMastered(ctx context.Context, userID string, concepts ...string) error {
	now := s.timestamp()
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ensureLearner(ctx, tx, userID, now); err != nil {
			return err
		}
		for _, concept := range concepts {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO learner_mastery (user_id, concept, mastered_at) VALUES (?, ?, ?)
			`, userID, concept, now); err != nil {
				return storeErr("failed to record mastery", err)
			}
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM learner_gaps WHERE user_id = ? AND concept = ?
			`, userID, concept); err != nil {
				return storeErr("failed to clear gap", err)
			}
		}
		return nil
	})
}

func ensureLearner(ctx context.Context, tx *sql.Tx, userID, now string) error {
	if userID == "" {
		return errors.Newf(errors.InvalidRequest, "user id is required")
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO learners (user_id, created_at, updated_at) VALUES (?, ?, ?)
	`, userID, now, now); err != nil {
		return storeErr("failed to create learner", err)
	}
	return nil
}
