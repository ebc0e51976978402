// Package config provides CLI configuration and the user-facing error type.
package config

import (
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeFlowNotFound     = "FLOW_NOT_FOUND"
	ErrCodeFlowParse        = "FLOW_PARSE"
	ErrCodeFlowInvalid      = "FLOW_INVALID"
	ErrCodeFlowVersion      = "FLOW_VERSION"
	ErrCodeStepInvalid      = "STEP_INVALID"
	ErrCodeCompletionFailed = "COMPLETION_FAILED"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeSessionCorrupt   = "SESSION_CORRUPT"
	ErrCodeConfigParse      = "CONFIG_PARSE"
	ErrCodeOutputWrite      = "OUTPUT_WRITE"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "FLOW_PARSE")
	Message    string // User-friendly error message
	Context    string // File path, step ID, or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of the error with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	clone := *e
	clone.Context = ctx
	return &clone
}

// WithSuggestion returns a copy of the error with a suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	clone := *e
	clone.Suggestion = suggestion
	return &clone
}

// WithUnderlying returns a copy of the error wrapping the given cause.
func (e *UserError) WithUnderlying(err error) *UserError {
	clone := *e
	clone.Underlying = err
	return &clone
}
