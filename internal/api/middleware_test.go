package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codecoach/internal/errors"
	"codecoach/internal/slogutil"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"generated", ""},
		{"propagated", "req-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if seen == "" || w.Header().Get("X-Request-ID") != seen {
				t.Errorf("context id %q, header %q", seen, w.Header().Get("X-Request-ID"))
			}
			if tt.header != "" && seen != tt.header {
				t.Errorf("id = %q, want %q", seen, tt.header)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(slogutil.NewDiscardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.InvalidRequest, http.StatusBadRequest},
		{errors.SourceTooLarge, http.StatusRequestEntityTooLarge},
		{errors.ProfileNotFound, http.StatusNotFound},
		{errors.SubmissionNotFound, http.StatusNotFound},
		{errors.Timeout, http.StatusGatewayTimeout},
		{errors.CollaboratorUnavailable, http.StatusServiceUnavailable},
		{errors.StoreUnavailable, http.StatusServiceUnavailable},
		{errors.InternalError, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := MapErrorToStatus(tt.code); got != tt.want {
				t.Errorf("MapErrorToStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
