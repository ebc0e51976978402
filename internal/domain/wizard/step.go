// Package wizard provides the step sequencer that drives guided multi-step flows.
package wizard

import "context"

// Result is the outcome of a step validation.
// A step validator decides explicitly between Valid and Invalid; there is no
// implicit pass-through shape.
type Result struct {
	ok      bool
	message string
}

// Valid returns a passing validation result.
func Valid() Result {
	return Result{ok: true}
}

// Invalid returns a failing validation result with a user-facing message.
func Invalid(message string) Result {
	return Result{message: message}
}

// OK reports whether the validation passed.
func (r Result) OK() bool {
	return r.ok
}

// Message returns the failure message. Empty for passing results.
func (r Result) Message() string {
	return r.message
}

// ValidateFunc checks the accumulated flow data before leaving a step.
// Validators may block (network lookups, file probes); the sequencer
// guarantees at most one call is in flight at a time.
type ValidateFunc func(ctx context.Context, data map[string]any) Result

// Step is one page of a guided flow. Steps are defined once at sequence
// construction time and never change during a session.
type Step struct {
	// ID is a stable identifier, unique within a sequence.
	ID string

	// Title and Description are display text with no behavioral role.
	Title       string
	Description string

	// Optional marks the step as skippable in the UI. It only affects
	// decoration: a defined Validate still runs on forward navigation.
	Optional bool

	// Disabled blocks direct navigation to this step.
	Disabled bool

	// Validate gates forward navigation out of this step. A nil Validate
	// always passes.
	Validate ValidateFunc
}
