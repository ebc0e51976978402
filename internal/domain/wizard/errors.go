package wizard

import (
	"errors"
	"fmt"
)

// genericInvalidMessage is recorded when a validator fails without a message.
const genericInvalidMessage = "validation failed"

// ErrNotLastStep is returned by Complete when the sequencer is not on the
// final step.
var ErrNotLastStep = errors.New("wizard: complete requires the last step")

// StepInvalidError reports a failed step validation. It blocks forward
// progress and is recoverable: the user amends input and retries.
type StepInvalidError struct {
	Index   int
	StepID  string
	Message string
}

// Error returns the formatted validation failure.
func (e *StepInvalidError) Error() string {
	return fmt.Sprintf("step %q invalid: %s", e.StepID, e.Message)
}

// CompletionError reports a failed completion handler. The sequencer stays
// on the last step so the caller can retry.
type CompletionError struct {
	Err error
}

// Error returns the formatted completion failure.
func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

// Unwrap returns the handler's error for error chain support.
func (e *CompletionError) Unwrap() error {
	return e.Err
}
