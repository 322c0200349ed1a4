package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// routes builds the router. Middleware order: request id, recovery,
// logging, metrics, then the body cap.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware(s.metrics))
	r.Use(chimiddleware.CleanPath)
	r.Use(BodyLimitMiddleware(s.maxBody))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleAnalyzeBatch)
		r.Get("/catalog", s.handleCatalog)

		r.Route("/learners/{userID}", func(r chi.Router) {
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handlePutProfile)
			r.Get("/submissions", s.handleListSubmissions)
			r.Get("/submissions/{submissionID}", s.handleGetSubmission)
			r.Get("/stats", s.handleStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, ErrorResponse{Error: "not found", Code: "NOT_FOUND", RequestID: GetRequestID(r.Context())}, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED", RequestID: GetRequestID(r.Context())}, http.StatusMethodNotAllowed)
	})
	return r
}
