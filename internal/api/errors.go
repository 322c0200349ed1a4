package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"codecoach/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
	RequestID      string             `json:"requestId,omitempty"`
}

// WriteError writes err with the status mapped from its code. Errors
// without a code are reported as INTERNAL_ERROR with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	ce := errors.From(err)
	status := MapErrorToStatus(ce.Code)

	resp := ErrorResponse{
		Error:          ce.Message,
		Code:           string(ce.Code),
		Details:        ce.Details,
		SuggestedFixes: ce.SuggestedFixes,
	}
	if r != nil {
		resp.RequestID = GetRequestID(r.Context())
	}
	WriteJSON(w, resp, status)
}

// MapErrorToStatus maps error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidRequest:
		return http.StatusBadRequest // 400
	case errors.SourceTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	case errors.ProfileNotFound, errors.SubmissionNotFound:
		return http.StatusNotFound // 404
	case errors.Timeout:
		return http.StatusGatewayTimeout // 504
	case errors.CollaboratorUnavailable, errors.StoreUnavailable:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, errors.Newf(errors.InvalidRequest, "%s", message))
}
