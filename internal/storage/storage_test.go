package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"codecoach/internal/complexity"
	"codecoach/internal/errors"
	"codecoach/internal/recommend"
	"codecoach/internal/slogutil"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".coach", "coach.db")

	db, err := Open(path, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return NewStore(db), path
}

func TestDatabaseInitialization(t *testing.T) {
	store, path := setupTestStore(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Database file was not created at %s: %v", path, err)
	}
	version, err := store.db.getSchemaVersion()
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestReopenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.db")
	logger := slogutil.NewDiscardLogger()

	db, err := Open(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewStore(db).SaveProfile(context.Background(), "ada", recommend.LearnerProfile{}); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, err = Open(path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if _, err := NewStore(db).LoadProfile(context.Background(), "ada"); err != nil {
		t.Errorf("profile lost across reopen: %v", err)
	}
}

func TestLoadProfileNotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadProfile(context.Background(), "nobody")
	if !errors.Is(err, errors.ProfileNotFound) {
		t.Errorf("err = %v, want PROFILE_NOT_FOUND", err)
	}
}

func TestSaveLoadProfile(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	want := recommend.LearnerProfile{
		Style:      recommend.StyleVector{Analytical: 0.7, Practical: 0.3},
		PriorGaps:  map[string]int{"two_pointers": 2, "hash_table": 1},
		Mastered:   []string{"array", "stack"},
		SkillLevel: recommend.Beginner,
	}
	if err := store.SaveProfile(ctx, "ada", want); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := store.LoadProfile(ctx, "ada")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadProfile = %+v, want %+v", got, want)
	}

	// saving again replaces tallies and mastery
	want.PriorGaps = map[string]int{"recursion": 1}
	want.Mastered = nil
	if err := store.SaveProfile(ctx, "ada", want); err != nil {
		t.Fatal(err)
	}
	got, _ = store.LoadProfile(ctx, "ada")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after replace = %+v, want %+v", got, want)
	}
}

func TestSaveProfileRejects(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user string
		p    recommend.LearnerProfile
	}{
		{"empty user", "", recommend.LearnerProfile{}},
		{"negative weight", "ada", recommend.LearnerProfile{Style: recommend.StyleVector{Creative: -1}}},
		{"bad level", "ada", recommend.LearnerProfile{SkillLevel: "guru"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveProfile(ctx, tt.user, tt.p); !errors.Is(err, errors.InvalidRequest) {
				t.Errorf("err = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestRecordGaps(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	if err := store.MarkMastered(ctx, "ada", "array"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordGaps(ctx, "ada", []string{"two_pointers", "array"}); err != nil {
			t.Fatalf("RecordGaps: %v", err)
		}
	}
	if err := store.RecordGaps(ctx, "ada", []string{"hash_table"}); err != nil {
		t.Fatal(err)
	}

	p, err := store.LoadProfile(ctx, "ada")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"two_pointers": 3, "hash_table": 1}
	if !reflect.DeepEqual(p.PriorGaps, want) {
		t.Errorf("PriorGaps = %v, want %v", p.PriorGaps, want)
	}
	if p.SkillLevel != recommend.Intermediate {
		t.Errorf("SkillLevel = %q, want intermediate for an implicit learner", p.SkillLevel)
	}

	if err := store.MarkMastered(ctx, "ada", "two_pointers"); err != nil {
		t.Fatal(err)
	}
	p, _ = store.LoadProfile(ctx, "ada")
	if p.Occurrences("two_pointers") != 0 || !p.HasMastered("two_pointers") {
		t.Errorf("mastery did not clear the gap: %+v", p)
	}
}

func TestRecordSubmission(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	code := strings.Repeat("for i in range(n):\n    total += i\n", 20)
	subs := []recommend.Submission{
		{Language: "python", ProblemTitle: "Sum", Code: code, Time: complexity.ON, Space: complexity.O1,
			QualityScore: 80, ComplexityScore: 85, Patterns: []string{"array"}, SubmittedAt: base},
		{Language: "python", ProblemTitle: "Sum", Code: code, Time: complexity.ON, Space: complexity.O1,
			QualityScore: 90, ComplexityScore: 85, SubmittedAt: base.Add(time.Hour)},
		{Language: "go", ProblemTitle: "Pairs", Code: "for {}", Time: complexity.ON2, Space: complexity.O1,
			QualityScore: 60, ComplexityScore: 55, Gaps: []string{"hash_table"}, SubmittedAt: base.Add(2 * time.Hour)},
	}
	var ids []string
	for _, s := range subs {
		id, err := store.RecordSubmission(ctx, "ada", s)
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
		ids = append(ids, id)
	}

	records, err := store.Submissions(ctx, "ada", 0)
	if err != nil {
		t.Fatalf("Submissions: %v", err)
	}
	if len(records) != 3 || records[0].ID != ids[2] {
		t.Fatalf("records = %+v, want newest first", records)
	}
	if records[0].Time != complexity.ON2 || !reflect.DeepEqual(records[0].Gaps, []string{"hash_table"}) {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Fingerprint != records[2].Fingerprint {
		t.Error("identical code should share a fingerprint")
	}

	limited, _ := store.Submissions(ctx, "ada", 1)
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d records", len(limited))
	}

	got, err := store.Submission(ctx, "ada", ids[0])
	if err != nil {
		t.Fatalf("Submission: %v", err)
	}
	if got.Code != code {
		t.Error("code did not survive the round trip")
	}
	if got.ID != ids[0] || got.ProblemTitle != "Sum" || got.Time != complexity.ON || !reflect.DeepEqual(got.Patterns, []string{"array"}) {
		t.Errorf("Submission = %+v", got.SubmissionRecord)
	}
	if _, err := store.Submission(ctx, "grace", ids[0]); !errors.Is(err, errors.SubmissionNotFound) {
		t.Errorf("Submission(other user) err = %v, want SUBMISSION_NOT_FOUND", err)
	}
	if _, err := store.Submission(ctx, "ada", "missing"); !errors.Is(err, errors.SubmissionNotFound) {
		t.Errorf("Submission(missing) err = %v, want SUBMISSION_NOT_FOUND", err)
	}

	stats, err := store.Stats(ctx, "ada", time.Time{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Submissions != 3 || len(stats.Languages) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	py := stats.Languages[1]
	if py.Language != "python" || py.AvgQuality != 85 || py.BestQuality != 90 || py.DistinctSources != 1 {
		t.Errorf("python stats = %+v", py)
	}
	if stats.LastSeen == nil || !stats.LastSeen.Equal(base.Add(2*time.Hour)) {
		t.Errorf("LastSeen = %v", stats.LastSeen)
	}

	recent, _ := store.Stats(ctx, "ada", base.Add(90*time.Minute))
	if recent.Submissions != 1 {
		t.Errorf("recent submissions = %d, want 1", recent.Submissions)
	}

	later, err := store.Stats(ctx, "ada", base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if later.Submissions != 0 || later.LastSeen != nil || later.Trend != nil {
		t.Errorf("stats after the last submission = %+v, want empty", later)
	}
}

func TestStatsTrend(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := func(i int, tc complexity.Bound, quality float64) {
		t.Helper()
		_, err := store.RecordSubmission(ctx, "ada", recommend.Submission{
			Language: "python", ProblemTitle: "P", Code: "x", Time: tc, Space: complexity.O1,
			QualityScore: quality, SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordSubmission: %v", err)
		}
	}

	record(0, complexity.ON2, 40)
	record(1, complexity.ON, 60)
	stats, err := store.Stats(ctx, "ada", time.Time{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Trend != nil {
		t.Errorf("Trend with 2 submissions = %+v, want nil", stats.Trend)
	}

	record(2, complexity.ON, 80)
	record(3, complexity.OLogN, 90)
	record(4, complexity.ON, 70)
	stats, err = store.Stats(ctx, "ada", time.Time{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	tr := stats.Trend
	if tr == nil {
		t.Fatal("Trend = nil, want a comparison over 5 submissions")
	}
	// older half: 40, 60; recent half: 80, 90, 70
	if tr.OlderAvgQuality != 50 || tr.RecentAvgQuality != 80 || tr.Improvement != 30 {
		t.Errorf("Trend = older %v, recent %v, improvement %v; want 50, 80, 30",
			tr.OlderAvgQuality, tr.RecentAvgQuality, tr.Improvement)
	}

	want := []ComplexityPerformance{
		{TimeComplexity: complexity.OLogN, Attempts: 1, AvgQuality: 90},
		{TimeComplexity: complexity.ON, Attempts: 3, AvgQuality: 70},
		{TimeComplexity: complexity.ON2, Attempts: 1, AvgQuality: 40},
	}
	if !reflect.DeepEqual(tr.ByTimeComplexity, want) {
		t.Errorf("ByTimeComplexity = %+v, want %+v", tr.ByTimeComplexity, want)
	}
	if stats.SkillLevel != string(recommend.Intermediate) {
		t.Errorf("SkillLevel = %q, want the default level", stats.SkillLevel)
	}
}

func TestEvaluateSkillLevel(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		level      recommend.SkillLevel
		quality    []float64
		complexity float64
		age        time.Duration
		want       recommend.SkillLevel
		promoted   bool
	}{
		{"beginner clears thresholds", recommend.Beginner, []float64{75, 80, 72}, 65, time.Hour, recommend.Intermediate, true},
		{"beginner below quality", recommend.Beginner, []float64{70, 70, 70}, 90, time.Hour, recommend.Beginner, false},
		{"beginner below complexity", recommend.Beginner, []float64{90, 90, 90}, 60, time.Hour, recommend.Beginner, false},
		{"too few submissions", recommend.Beginner, []float64{95, 95}, 95, time.Hour, recommend.Beginner, false},
		{"scores outside the window", recommend.Beginner, []float64{95, 95, 95}, 95, PromotionWindow + time.Hour, recommend.Beginner, false},
		{"intermediate to advanced", recommend.Intermediate, []float64{90, 88, 86}, 85, time.Hour, recommend.Advanced, true},
		{"intermediate not yet advanced", recommend.Intermediate, []float64{80, 80, 80}, 85, time.Hour, recommend.Intermediate, false},
		{"advanced stays", recommend.Advanced, []float64{10, 10, 10}, 10, time.Hour, recommend.Advanced, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := setupTestStore(t)
			store.now = func() time.Time { return now }
			ctx := context.Background()

			if err := store.SaveProfile(ctx, "ada", recommend.LearnerProfile{SkillLevel: tt.level}); err != nil {
				t.Fatalf("SaveProfile: %v", err)
			}
			for i, q := range tt.quality {
				_, err := store.RecordSubmission(ctx, "ada", recommend.Submission{
					Language: "go", ProblemTitle: "P", Code: "x",
					QualityScore: q, ComplexityScore: tt.complexity,
					SubmittedAt: now.Add(-tt.age - time.Duration(i)*time.Minute),
				})
				if err != nil {
					t.Fatalf("RecordSubmission: %v", err)
				}
			}

			got, promoted, err := store.EvaluateSkillLevel(ctx, "ada")
			if err != nil {
				t.Fatalf("EvaluateSkillLevel: %v", err)
			}
			if got != tt.want || promoted != tt.promoted {
				t.Errorf("EvaluateSkillLevel = %s, %v; want %s, %v", got, promoted, tt.want, tt.promoted)
			}
			p, _ := store.LoadProfile(ctx, "ada")
			if p.SkillLevel != tt.want {
				t.Errorf("stored level = %s, want %s", p.SkillLevel, tt.want)
			}
		})
	}
}

func TestEvaluateSkillLevelUnknownLearner(t *testing.T) {
	store, _ := setupTestStore(t)
	level, promoted, err := store.EvaluateSkillLevel(context.Background(), "nobody")
	if err != nil || promoted || level != "" {
		t.Errorf("EvaluateSkillLevel(unknown) = %q, %v, %v", level, promoted, err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("python", "x = 1")
	if len(a) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(a))
	}
	if a != Fingerprint("python", "x = 1") {
		t.Error("fingerprint is not stable")
	}
	if a == Fingerprint("go", "x = 1") {
		t.Error("language should change the fingerprint")
	}
}

func TestTrack(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	sub := recommend.Submission{Language: "go", ProblemTitle: "Pairs", Code: "x", Gaps: []string{"hash_table", "two_pointers"}}

	if _, err := store.Track(ctx, "ada", sub, true); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if _, err := store.Track(ctx, "ada", sub, false); err != nil {
		t.Fatalf("Track: %v", err)
	}

	p, err := store.LoadProfile(ctx, "ada")
	if err != nil {
		t.Fatal(err)
	}
	if p.Occurrences("hash_table") != 1 || p.Occurrences("two_pointers") != 1 {
		t.Errorf("PriorGaps = %v, want one count each", p.PriorGaps)
	}
	records, _ := store.Submissions(ctx, "ada", 0)
	if len(records) != 2 {
		t.Errorf("submissions = %d, want 2", len(records))
	}
}

func TestTrackPromotesSkillLevel(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	if err := store.SaveProfile(ctx, "ada", recommend.LearnerProfile{SkillLevel: recommend.Beginner}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	strong := recommend.Submission{Language: "go", ProblemTitle: "P", Code: "x", QualityScore: 90, ComplexityScore: 75}

	// degraded analyses are recorded but never promote
	for i := 0; i < MinPromotionSubmissions; i++ {
		if _, err := store.Track(ctx, "ada", strong, false); err != nil {
			t.Fatalf("Track: %v", err)
		}
	}
	if p, _ := store.LoadProfile(ctx, "ada"); p.SkillLevel != recommend.Beginner {
		t.Fatalf("level after degraded tracking = %s, want beginner", p.SkillLevel)
	}

	if _, err := store.Track(ctx, "ada", strong, true); err != nil {
		t.Fatalf("Track: %v", err)
	}
	p, _ := store.LoadProfile(ctx, "ada")
	if p.SkillLevel != recommend.Intermediate {
		t.Errorf("level = %s, want intermediate", p.SkillLevel)
	}
	if p.SkillLevel.Multiplier() != 1.0 {
		t.Errorf("Multiplier = %v, want 1.0 after promotion", p.SkillLevel.Multiplier())
	}
}
