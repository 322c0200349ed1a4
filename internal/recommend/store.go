package recommend

import (
	"context"
	"time"

	"codecoach/internal/complexity"
)

// ProfileStore loads and saves learner profiles.
type ProfileStore interface {
	LoadProfile(ctx context.Context, userID string) (LearnerProfile, error)
	SaveProfile(ctx context.Context, userID string, p LearnerProfile) error
}

// Submission is one analyzed submission as recorded by a SubmissionRecorder.
type Submission struct {
	Language        string
	ProblemTitle    string
	Code            string
	Time            complexity.Bound
	Space           complexity.Bound
	QualityScore    float64
	ComplexityScore float64
	Patterns        []string
	Gaps            []string
	SubmittedAt     time.Time
}

// SubmissionRecorder persists submissions and returns their id.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, userID string, s Submission) (string, error)
}

// GapConcepts returns the concepts of gaps in bundle order.
func (b Bundle) GapConcepts() []string {
	out := make([]string, 0, len(b.KnowledgeGaps))
	for _, g := range b.KnowledgeGaps {
		out = append(out, g.Concept)
	}
	return out
}
