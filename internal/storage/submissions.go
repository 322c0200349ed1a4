package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"codecoach/internal/complexity"
	"codecoach/internal/errors"
	"codecoach/internal/recommend"
)

// SubmissionRecord is a recorded submission without its code.
type SubmissionRecord struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Language        string           `json:"language"`
	ProblemTitle    string           `json:"problem_title"`
	Fingerprint     string           `json:"fingerprint"`
	Time            complexity.Bound `json:"time_complexity"`
	Space           complexity.Bound `json:"space_complexity"`
	QualityScore    float64          `json:"quality_score"`
	ComplexityScore float64          `json:"complexity_score"`
	Patterns        []string         `json:"patterns"`
	Gaps            []string         `json:"gaps"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

// RecordSubmission stores an analyzed submission and returns its id. The
// learner row is created on first use.
func (s *Store) RecordSubmission(ctx context.Context, userID string, sub recommend.Submission) (string, error) {
	blob, err := compressCode(sub.Code)
	if err != nil {
		return "", storeErr("failed to encode code", err)
	}
	patternsJSON, err := json.Marshal(nonNil(sub.Patterns))
	if err != nil {
		return "", storeErr("failed to encode patterns", err)
	}
	gapsJSON, err := json.Marshal(nonNil(sub.Gaps))
	if err != nil {
		return "", storeErr("failed to encode gaps", err)
	}

	at := sub.SubmittedAt
	if at.IsZero() {
		at = s.now()
	}
	id := uuid.New().String()
	now := s.timestamp()

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ensureLearner(ctx, tx, userID, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (
				id, user_id, language, problem_title, fingerprint, code,
				time_complexity, space_complexity, quality_score, complexity_score,
				patterns_json, gaps_json, submitted_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, userID, sub.Language, sub.ProblemTitle, Fingerprint(sub.Language, sub.Code), blob,
			sub.Time.String(), sub.Space.String(), sub.QualityScore, sub.ComplexityScore,
			string(patternsJSON), string(gapsJSON), at.UTC().Format(timeLayout)); err != nil {
			return storeErr("failed to record submission", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.db.logger.Debug("Recorded submission", "id", id, "user", userID, "problem", sub.ProblemTitle)
	return id, nil
}

// Track records an analyzed submission. When countGaps is set, the analysis
// completed: the learner's tally for each of its gaps is incremented and the
// skill level is re-evaluated against recent scores.
func (s *Store) Track(ctx context.Context, userID string, sub recommend.Submission, countGaps bool) (string, error) {
	id, err := s.RecordSubmission(ctx, userID, sub)
	if err != nil {
		return "", err
	}
	if !countGaps {
		return id, nil
	}
	if len(sub.Gaps) > 0 {
		if err := s.RecordGaps(ctx, userID, sub.Gaps); err != nil {
			return id, err
		}
	}
	if _, _, err := s.EvaluateSkillLevel(ctx, userID); err != nil {
		return id, err
	}
	return id, nil
}

// SubmissionDetail is a recorded submission with its code.
type SubmissionDetail struct {
	SubmissionRecord
	Code string `json:"code"`
}

const submissionColumns = `id, user_id, language, problem_title, fingerprint,
	time_complexity, space_complexity, quality_score, complexity_score,
	patterns_json, gaps_json, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner, extra ...any) (SubmissionRecord, error) {
	var r SubmissionRecord
	var timeClass, spaceClass, patternsJSON, gapsJSON, at string
	dest := append([]any{&r.ID, &r.UserID, &r.Language, &r.ProblemTitle, &r.Fingerprint,
		&timeClass, &spaceClass, &r.QualityScore, &r.ComplexityScore,
		&patternsJSON, &gapsJSON, &at}, extra...)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	// unknown strings decode as Unknown
	r.Time, _ = complexity.ParseBound(timeClass)
	r.Space, _ = complexity.ParseBound(spaceClass)
	if err := json.Unmarshal([]byte(patternsJSON), &r.Patterns); err != nil {
		return r, fmt.Errorf("failed to decode patterns: %w", err)
	}
	if err := json.Unmarshal([]byte(gapsJSON), &r.Gaps); err != nil {
		return r, fmt.Errorf("failed to decode gaps: %w", err)
	}
	r.SubmittedAt, _ = time.Parse(timeLayout, at)
	return r, nil
}

// Submissions lists a learner's submissions, newest first. limit <= 0
// returns all of them.
func (s *Store) Submissions(ctx context.Context, userID string, limit int) ([]SubmissionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE user_id = ?
		ORDER BY submitted_at DESC, id
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, storeErr("failed to list submissions", err)
	}
	defer rows.Close()

	records := []SubmissionRecord{}
	for rows.Next() {
		r, err := scanSubmission(rows)
		if err != nil {
			return nil, storeErr("failed to scan submission", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to list submissions", err)
	}
	return records, nil
}

// Submission returns one of the learner's submissions with its code, or
// SUBMISSION_NOT_FOUND when the id is unknown or belongs to someone else.
func (s *Store) Submission(ctx context.Context, userID, id string) (*SubmissionDetail, error) {
	var blob []byte
	row := s.db.conn.QueryRowContext(ctx, `
		SELECT `+submissionColumns+`, code
		FROM submissions
		WHERE user_id = ? AND id = ?
	`, userID, id)
	r, err := scanSubmission(row, &blob)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.SubmissionNotFound, "no submission %q for user %q", id, userID)
	}
	if err != nil {
		return nil, storeErr("failed to load submission", err)
	}
	code, err := decompressCode(blob)
	if err != nil {
		return nil, storeErr("failed to load submission", err)
	}
	return &SubmissionDetail{SubmissionRecord: r, Code: code}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
