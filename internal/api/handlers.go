package api

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"codecoach/internal/engine"
	"codecoach/internal/errors"
	"codecoach/internal/features"
	"codecoach/internal/recommend"
)

// MaxBatchSize caps the number of requests in one batch call.
const MaxBatchSize = 50

// AnalyzeRequest is the POST /v1/analyze body. A user_id ties the call to
// a stored learner profile and records the submission.
type AnalyzeRequest struct {
	engine.Request
	UserID string `json:"user_id,omitempty"`
}

// AnalyzeResponse adds the recorded submission id to the engine response.
type AnalyzeResponse struct {
	*engine.Response
	SubmissionID string `json:"submission_id,omitempty"`
}

// BatchRequest is the POST /v1/analyze/batch body.
type BatchRequest struct {
	Requests []engine.Request `json:"requests"`
}

// BatchResponse carries one result per request, in request order.
type BatchResponse struct {
	Results []engine.BatchResult `json:"results"`
}

// decodeBody decodes a JSON body, mapping oversize bodies to SOURCE_TOO_LARGE.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.SourceTooLarge, "request body too large", err).
				WithDetails(map[string]int64{"limit": tooLarge.Limit})
		}
		return errors.New(errors.InvalidRequest, "invalid JSON body", err)
	}
	return nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := decodeBody(r, &body); err != nil {
		WriteError(w, r, err)
		return
	}
	ctx := r.Context()
	req := body.Request

	track := body.UserID != "" && s.store != nil
	if track {
		p, err := s.store.LoadProfile(ctx, body.UserID)
		switch {
		case err == nil:
			req = req.WithStoredProfile(p)
		case !errors.Is(err, errors.ProfileNotFound):
			WriteError(w, r, err)
			return
		}
	}

	resp, err := s.engine.Analyze(ctx, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	lang, _ := features.ParseLanguage(req.Language)
	s.metrics.observeAnalysis(string(lang), resp)

	out := AnalyzeResponse{Response: resp}
	if track {
		sub := engine.NewSubmission(req, resp, time.Now())
		id, err := s.store.Track(ctx, body.UserID, sub, resp.Degraded == nil)
		if err != nil {
			s.logger.Warn("Failed to record submission",
				"user", body.UserID,
				"error", err.Error(),
				"requestID", GetRequestID(ctx),
			)
		}
		out.SubmissionID = id
	}
	WriteJSON(w, out, http.StatusOK)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := decodeBody(r, &body); err != nil {
		WriteError(w, r, err)
		return
	}
	if len(body.Requests) == 0 {
		BadRequest(w, r, "requests must not be empty")
		return
	}
	if len(body.Requests) > MaxBatchSize {
		BadRequest(w, r, "at most "+strconv.Itoa(MaxBatchSize)+" requests per batch")
		return
	}

	results, err := s.engine.AnalyzeBatch(r.Context(), body.Requests)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	for i, res := range results {
		if res.Response != nil {
			lang, _ := features.ParseLanguage(body.Requests[i].Language)
			s.metrics.observeAnalysis(string(lang), res.Response)
		}
	}
	WriteJSON(w, BatchResponse{Results: results}, http.StatusOK)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, s.engine.Catalog(), http.StatusOK)
}

// requireStore answers 503 when no profile store is configured.
func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		WriteError(w, r, errors.Newf(errors.StoreUnavailable, "profile storage is not configured"))
		return false
	}
	return true
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	p, err := s.store.LoadProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, p, http.StatusOK)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	userID := chi.URLParam(r, "userID")

	var p recommend.LearnerProfile
	if err := decodeBody(r, &p); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := s.store.SaveProfile(r.Context(), userID, p); err != nil {
		WriteError(w, r, err)
		return
	}
	saved, err := s.store.LoadProfile(r.Context(), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, saved, http.StatusOK)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			BadRequest(w, r, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	records, err := s.store.Submissions(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, records, http.StatusOK)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	sub, err := s.store.Submission(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "submissionID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, sub, http.StatusOK)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			BadRequest(w, r, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	stats, err := s.store.Stats(r.Context(), chi.URLParam(r, "userID"), since)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, stats, http.StatusOK)
}
