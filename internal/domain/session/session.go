// Package session provides persistence for in-progress wizard runs.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session captures a resumable wizard run.
type Session struct {
	ID         string            `json:"id"`
	FlowName   string            `json:"flow_name"`
	FlowPath   string            `json:"flow_path"`
	StepID     string            `json:"step_id"`
	Data       map[string]any    `json:"data"`
	StepErrors map[string]string `json:"step_errors,omitempty"`
	Completed  bool              `json:"completed"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// New creates a session for the given flow.
func New(flowName, flowPath string) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		FlowName:   flowName,
		FlowPath:   flowPath,
		Data:       make(map[string]any),
		StepErrors: make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch records the current step and data, bumping the update time.
func (s *Session) Touch(stepID string, data map[string]any, stepErrors map[string]string) {
	s.StepID = stepID
	s.Data = data
	s.StepErrors = stepErrors
	s.UpdatedAt = time.Now()
}

// MarkCompleted flags the session as finished.
func (s *Session) MarkCompleted() {
	s.Completed = true
	s.UpdatedAt = time.Now()
}
