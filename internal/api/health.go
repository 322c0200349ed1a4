package api

import (
	"net/http"
	"time"

	"codecoach/internal/features"
	"codecoach/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Uptime      string    `json:"uptime"`
	Storage     bool      `json:"storage"`
	Correctness bool      `json:"correctness"`

	// Parser is the extraction mode new analyses use: structural or scan
	Parser features.Mode `json:"parser"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Version:     version.Version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Storage:     s.store != nil,
		Correctness: s.engine.HasChecker(),
		Parser:      parserMode(),
	}, http.StatusOK)
}

func parserMode() features.Mode {
	if features.StructuralAvailable() {
		return features.ModeStructural
	}
	return features.ModeScan
}
