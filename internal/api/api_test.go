package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"codecoach/internal/complexity"
	"codecoach/internal/config"
	"codecoach/internal/engine"
	"codecoach/internal/storage"
	"codecoach/internal/slogutil"
)

const twoSum = "def two_sum(nums, target):\n  m={}\n  for i,n in enumerate(nums):\n    c=target-n\n    if c in m: return [m[c], i]\n    m[n]=i\n  return []"

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	logger := slogutil.NewDiscardLogger()

	eng, err := engine.NewEngine(cfg, nil, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	var store *storage.Store
	if withStore {
		db, err := storage.Open(filepath.Join(t.TempDir(), "coach.db"), logger)
		if err != nil {
			t.Fatalf("storage.Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		store = storage.NewStore(db)
	}
	return NewServer(cfg, eng, store, logger)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var h HealthResponse
	decode(t, w, &h)
	if h.Status != "ok" || h.Storage || h.Correctness {
		t.Errorf("health = %+v", h)
	}
	if h.Parser != parserMode() {
		t.Errorf("Parser = %q, want %q", h.Parser, parserMode())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodPost, "/v1/analyze", map[string]interface{}{
		"code":          twoSum,
		"language":      "python",
		"problem_title": "Two Sum",
		"learner_profile": map[string]float64{
			"analytical": 1,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var raw map[string]map[string]interface{}
	decode(t, w, &raw)
	analysis := raw["analysis"]
	if analysis["time_complexity"] != "O(n)" || analysis["space_complexity"] != "O(n)" {
		t.Errorf("complexity = %v / %v", analysis["time_complexity"], analysis["space_complexity"])
	}
	recs := raw["recommendations"]
	for _, key := range []string{"knowledge_gaps", "concepts_to_learn", "improvement_suggestions", "personality_recommendations"} {
		if _, ok := recs[key]; !ok {
			t.Errorf("recommendations missing %q", key)
		}
	}
	if _, ok := recs["correctness"]; ok {
		t.Error("correctness present without a checker")
	}
	if _, ok := raw["submission_id"]; ok {
		t.Error("submission_id present without a user")
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed json", "{", http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing title", map[string]string{"code": "x", "language": "go"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad language", map[string]string{"code": "x", "language": "ruby", "problem_title": "T"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"oversized body", map[string]string{"code": strings.Repeat("x", 2<<20), "language": "go", "problem_title": "T"}, http.StatusRequestEntityTooLarge, "SOURCE_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/v1/analyze", tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			var e ErrorResponse
			decode(t, w, &e)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
			if e.RequestID == "" {
				t.Error("error response missing request id")
			}
		})
	}
}

func TestAnalyzeTracksLearner(t *testing.T) {
	s := newTestServer(t, true)

	put := do(t, s, http.MethodPut, "/v1/learners/ada/profile", map[string]interface{}{
		"style":       map[string]float64{"creative": 1},
		"prior_gaps":  map[string]int{"two_pointers": 2},
		"skill_level": "beginner",
	})
	if put.Code != http.StatusOK {
		t.Fatalf("PUT profile status = %d, body = %s", put.Code, put.Body.String())
	}

	w := do(t, s, http.MethodPost, "/v1/analyze", map[string]interface{}{
		"code":          twoSum,
		"language":      "python",
		"problem_title": "Two Sum",
		"user_id":       "ada",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AnalyzeResponse
	decode(t, w, &resp)
	if resp.SubmissionID == "" {
		t.Error("missing submission_id")
	}
	if advice := resp.Recommendations.PersonalityRecommendations; advice == nil || advice.Style != "creative" {
		t.Errorf("advice = %+v, want the stored creative style", advice)
	}

	subs := do(t, s, http.MethodGet, "/v1/learners/ada/submissions?limit=5", nil)
	var records []storage.SubmissionRecord
	decode(t, subs, &records)
	if len(records) != 1 || records[0].ID != resp.SubmissionID {
		t.Errorf("submissions = %+v", records)
	}

	one := do(t, s, http.MethodGet, "/v1/learners/ada/submissions/"+resp.SubmissionID, nil)
	if one.Code != http.StatusOK {
		t.Fatalf("GET submission status = %d, body = %s", one.Code, one.Body.String())
	}
	var detail storage.SubmissionDetail
	decode(t, one, &detail)
	if detail.ID != resp.SubmissionID || detail.Code != twoSum {
		t.Errorf("submission = %s with code %q", detail.ID, detail.Code)
	}

	for _, path := range []string{
		"/v1/learners/ada/submissions/no-such-id",
		"/v1/learners/bob/submissions/" + resp.SubmissionID,
	} {
		w := do(t, s, http.MethodGet, path, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, w.Code)
		}
		var e ErrorResponse
		decode(t, w, &e)
		if e.Code != "SUBMISSION_NOT_FOUND" {
			t.Errorf("GET %s code = %q, want SUBMISSION_NOT_FOUND", path, e.Code)
		}
	}

	stats := do(t, s, http.MethodGet, "/v1/learners/ada/stats", nil)
	var st storage.LearnerStats
	decode(t, stats, &st)
	if st.Submissions != 1 {
		t.Errorf("stats = %+v", st)
	}

	get := do(t, s, http.MethodGet, "/v1/learners/ada/profile", nil)
	var profile map[string]interface{}
	decode(t, get, &profile)
	gaps, _ := profile["prior_gaps"].(map[string]interface{})
	if len(gaps) < 1 {
		t.Errorf("prior_gaps = %v, want recorded gaps", profile["prior_gaps"])
	}
}

func TestLearnerEndpoints(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		s := newTestServer(t, false)
		w := do(t, s, http.MethodGet, "/v1/learners/ada/profile", nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	s := newTestServer(t, true)
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown learner", http.MethodGet, "/v1/learners/nobody/profile", nil, http.StatusNotFound},
		{"negative weight", http.MethodPut, "/v1/learners/ada/profile", map[string]interface{}{"style": map[string]float64{"practical": -1}}, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/v1/learners/ada/submissions?limit=0", nil, http.StatusBadRequest},
		{"bad since", http.MethodGet, "/v1/learners/ada/stats?since=yesterday", nil, http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/v1/learners/ada/profile", nil, http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/v2/nothing", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	s := newTestServer(t, false)

	w := do(t, s, http.MethodPost, "/v1/analyze/batch", BatchRequest{Requests: []engine.Request{
		{Code: twoSum, Language: "python", ProblemTitle: "Two Sum"},
		{Code: "x", Language: "python"},
	}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp BatchResponse
	decode(t, w, &resp)
	if len(resp.Results) != 2 || resp.Results[0].Response == nil || resp.Results[1].Error == nil {
		t.Errorf("results = %+v", resp.Results)
	}

	empty := do(t, s, http.MethodPost, "/v1/analyze/batch", BatchRequest{})
	if empty.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", empty.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	w := do(t, s, http.MethodGet, "/v1/catalog", nil)
	var c engine.Catalog
	decode(t, w, &c)
	if len(c.Detections) == 0 || len(c.Concepts) == 0 {
		t.Errorf("catalog = %+v", c)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	do(t, s, http.MethodPost, "/v1/analyze", map[string]string{"code": twoSum, "language": "py", "problem_title": "Two Sum"})

	w := do(t, s, http.MethodGet, "/metrics", nil)
	body := w.Body.String()
	for _, want := range []string{
		`coach_analyses_total{language="python",time_complexity="O(n)"} 1`,
		`coach_http_requests_total{method="POST",route="/v1/analyze",status="200"} 1`,
		`coach_correctness_verdicts_total{available="false"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestComplexityLabel(t *testing.T) {
	tests := []struct {
		bound complexity.Bound
		want  string
	}{
		{complexity.O1, "O(1)"},
		{complexity.ON2, "O(n^2)"},
		{complexity.Poly(3), "O(n^k)"},
		{complexity.Poly(17), "O(n^k)"},
		{complexity.ONFact, "O(n!)"},
		{complexity.Bound{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := complexityLabel(tt.bound); got != tt.want {
			t.Errorf("complexityLabel(%s) = %q, want %q", tt.bound, got, tt.want)
		}
	}
}
