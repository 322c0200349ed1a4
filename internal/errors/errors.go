package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidRequest indicates a request failed validation
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// SourceTooLarge indicates the source exceeded the size cap
	SourceTooLarge ErrorCode = "SOURCE_TOO_LARGE"
	// Timeout indicates the analysis time budget elapsed
	Timeout ErrorCode = "TIMEOUT"
	// CollaboratorUnavailable indicates the correctness checker could not answer
	CollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"
	// StoreUnavailable indicates the profile store failed
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ProfileNotFound indicates no profile exists for the user
	ProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	// SubmissionNotFound indicates no recorded submission has the id
	SubmissionNotFound ErrorCode = "SUBMISSION_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// SetConfig suggests changing a configuration value
	SetConfig FixActionType = "set-config"
	// EditInput suggests changing the request
	EditInput FixActionType = "edit-input"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Key         string        `json:"key,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// CoachError represents an error with code, message, and suggestions
type CoachError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a CoachError with the default fixes for code.
func New(code ErrorCode, message string, cause error) *CoachError {
	return &CoachError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *CoachError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *CoachError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoachError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CoachError) WithDetails(details interface{}) *CoachError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first CoachError in err's chain, or
// InternalError.
func CodeOf(err error) ErrorCode {
	var ce *CoachError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// Is reports whether err carries code.
func Is(err error, code ErrorCode) bool {
	var ce *CoachError
	return errors.As(err, &ce) && ce.Code == code
}

// From returns the first CoachError in err's chain, or wraps err as an
// INTERNAL_ERROR.
func From(err error) *CoachError {
	var ce *CoachError
	if errors.As(err, &ce) {
		return ce
	}
	return New(InternalError, "internal error", err)
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InvalidRequest: {
		{
			Type:        EditInput,
			Description: "Provide problem_title and one of: python, java, javascript, cpp, go",
		},
	},
	SourceTooLarge: {
		{
			Type:        SetConfig,
			Key:         "analysis.maxSourceBytes",
			Description: "Raise the source size cap",
		},
	},
	Timeout: {
		{
			Type:        SetConfig,
			Key:         "analysis.timeBudgetMs",
			Description: "Increase the analysis time budget",
		},
	},
	CollaboratorUnavailable: {
		{
			Type:        SetConfig,
			Key:         "correctness.enabled",
			Description: "Check OPENAI_API_KEY or disable correctness checks",
		},
	},
	StoreUnavailable: {
		{
			Type:        RunCommand,
			Command:     "coach profile show",
			Safe:        true,
			Description: "Check that the profile database opens",
		},
	},
	ProfileNotFound: {
		{
			Type:        RunCommand,
			Command:     "coach profile set --user ${user}",
			Safe:        true,
			Description: "Create a learner profile",
		},
	},
	SubmissionNotFound: {
		{
			Type:        RunCommand,
			Command:     "coach history --user ${user}",
			Safe:        true,
			Description: "List the learner's recorded submission ids",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
