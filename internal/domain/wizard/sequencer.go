package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// CompleteFunc receives the fully accumulated data bag when the last step's
// validation passes and the caller triggers completion. Persistence and any
// other side effects belong entirely to this handler.
type CompleteFunc func(ctx context.Context, data map[string]any) error

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithAllowStepJump enables direct navigation to arbitrary step indices via
// GoToStep. Next and Prev are unaffected.
func WithAllowStepJump(allow bool) Option {
	return func(s *Sequencer) {
		s.allowJump = allow
	}
}

// WithCompleteFunc sets the completion handler.
func WithCompleteFunc(fn CompleteFunc) Option {
	return func(s *Sequencer) {
		s.completeFn = fn
	}
}

// WithOnStepChange sets an observer invoked after every successful move.
func WithOnStepChange(fn func(from, to int)) Option {
	return func(s *Sequencer) {
		s.onStepChange = fn
	}
}

// WithOnDataChange sets an observer invoked after every data bag update.
func WithOnDataChange(fn func(data map[string]any)) Option {
	return func(s *Sequencer) {
		s.onDataChange = fn
	}
}

// StepState describes how a step should be decorated by a host UI.
type StepState int

// Step decoration states.
const (
	StepPending StepState = iota
	StepCompleted
	StepErrored
	StepCurrent
	StepDisabled
)

// Sequencer drives a linear, optionally index-jumpable walk through an
// ordered set of steps. Forward progress is gated on per-step validation;
// backward moves are unconditional. The accumulated data bag is handed to
// the completion handler when the last step validates.
type Sequencer struct {
	mu        sync.Mutex
	steps     []Step
	current   int
	bag       *DataBag
	errs      map[int]string
	allowJump bool

	completeFn   CompleteFunc
	onStepChange func(from, to int)
	onDataChange func(data map[string]any)

	// generation invalidates in-flight validation and completion calls:
	// Reset bumps it, and a resolution carrying a stale generation is
	// discarded instead of mutating state.
	generation uint64

	lifecycle *statekit.Interpreter[lifecycleContext]

	completedOverride map[int]bool
	erroredOverride   map[int]bool
}

// NewSequencer creates a sequencer over the given steps. Steps must be
// non-empty with unique, non-empty IDs.
func NewSequencer(steps []Step, opts ...Option) (*Sequencer, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard: at least one step is required")
	}
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		if step.ID == "" {
			return nil, fmt.Errorf("wizard: step %d has no ID", i)
		}
		if _, dup := seen[step.ID]; dup {
			return nil, fmt.Errorf("wizard: duplicate step ID %q", step.ID)
		}
		seen[step.ID] = struct{}{}
	}

	lifecycle, err := newLifecycle()
	if err != nil {
		return nil, fmt.Errorf("wizard: failed to build lifecycle machine: %w", err)
	}
	lifecycle.Start()

	s := &Sequencer{
		steps:             append([]Step(nil), steps...),
		bag:               NewDataBag(),
		errs:              make(map[int]string),
		lifecycle:         lifecycle,
		completedOverride: make(map[int]bool),
		erroredOverride:   make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Steps returns a copy of the step list.
func (s *Sequencer) Steps() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Step(nil), s.steps...)
}

// Len returns the number of steps.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// CurrentIndex returns the current step index.
func (s *Sequencer) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentStep returns the current step.
func (s *Sequencer) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.current]
}

// OnLastStep reports whether the current step is the final one.
func (s *Sequencer) OnLastStep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == len(s.steps)-1
}

// Data returns a snapshot of the accumulated data bag.
func (s *Sequencer) Data() map[string]any {
	return s.bag.Snapshot()
}

// UpdateData shallow-merges partial into the data bag. No validation runs on
// update; validation only runs at forward-navigation time.
func (s *Sequencer) UpdateData(partial map[string]any) {
	s.bag.Merge(partial)
	s.mu.Lock()
	notify := s.onDataChange
	s.mu.Unlock()
	if notify != nil {
		notify(s.bag.Snapshot())
	}
}

// ValidationError returns the stored failure message for a step index.
func (s *Sequencer) ValidationError(index int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.errs[index]
	return msg, ok
}

// ValidationErrors returns a copy of all stored failure messages by index.
func (s *Sequencer) ValidationErrors() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]string, len(s.errs))
	for i, msg := range s.errs {
		out[i] = msg
	}
	return out
}

// Phase returns the current lifecycle phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

// Validating reports whether a step validation is in flight.
func (s *Sequencer) Validating() bool {
	return s.Phase() == PhaseValidating
}

// Completing reports whether the completion handler is in flight.
func (s *Sequencer) Completing() bool {
	return s.Phase() == PhaseCompleting
}

// Done reports whether completion succeeded.
func (s *Sequencer) Done() bool {
	return s.Phase() == PhaseDone
}

// Generation returns the current session generation. Hosts dispatching
// asynchronous work capture it before starting and compare on resolution.
func (s *Sequencer) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Sequencer) phaseLocked() Phase {
	return Phase(s.lifecycle.State().Value)
}

// Next moves forward one step, gated on the current step's validation.
func (s *Sequencer) Next(ctx context.Context) error {
	s.mu.Lock()
	target := s.current + 1
	s.mu.Unlock()
	return s.goTo(ctx, target, false)
}

// Prev moves back one step. Backward moves never validate.
func (s *Sequencer) Prev(ctx context.Context) error {
	s.mu.Lock()
	target := s.current - 1
	s.mu.Unlock()
	return s.goTo(ctx, target, false)
}

// GoToStep navigates directly to target. Out-of-range, disabled, and (when
// step jumping is off) non-adjacent targets are silent no-ops: they are
// UI-wiring concerns, not runtime errors. Forward moves validate the current
// step first.
func (s *Sequencer) GoToStep(ctx context.Context, target int) error {
	return s.goTo(ctx, target, true)
}

func (s *Sequencer) goTo(ctx context.Context, target int, viaJump bool) error {
	s.mu.Lock()
	if target < 0 || target >= len(s.steps) {
		s.mu.Unlock()
		return nil
	}
	if s.steps[target].Disabled {
		s.mu.Unlock()
		return nil
	}
	if viaJump && !s.allowJump && target != s.current {
		s.mu.Unlock()
		return nil
	}
	if s.phaseLocked() != PhaseIdle {
		// Navigation controls are disabled while a validation or
		// completion call is pending, and after completion succeeds.
		s.mu.Unlock()
		return nil
	}

	from := s.current
	if target == from {
		s.mu.Unlock()
		return nil
	}

	if target < from {
		s.current = target
		notify := s.onStepChange
		s.mu.Unlock()
		if notify != nil {
			notify(from, target)
		}
		return nil
	}

	step := s.steps[from]
	if step.Validate == nil {
		delete(s.errs, from)
		s.current = target
		notify := s.onStepChange
		s.mu.Unlock()
		if notify != nil {
			notify(from, target)
		}
		return nil
	}

	s.generation++
	gen := s.generation
	s.lifecycle.Send(statekit.Event{Type: eventValidate})
	snapshot := s.bag.Snapshot()
	s.mu.Unlock()

	res := step.Validate(ctx, snapshot)

	s.mu.Lock()
	if s.generation != gen {
		// Superseded by Reset while in flight; discard the result.
		s.mu.Unlock()
		return nil
	}
	if !res.OK() {
		msg := res.Message()
		if msg == "" {
			msg = genericInvalidMessage
		}
		s.errs[from] = msg
		s.lifecycle.Send(statekit.Event{Type: eventInvalid})
		s.mu.Unlock()
		return &StepInvalidError{Index: from, StepID: step.ID, Message: msg}
	}

	delete(s.errs, from)
	s.current = target
	s.lifecycle.Send(statekit.Event{Type: eventValid})
	notify := s.onStepChange
	s.mu.Unlock()
	if notify != nil {
		notify(from, target)
	}
	return nil
}

// Complete runs the last step's validation and, on success, invokes the
// completion handler with the accumulated data bag. Handler failure leaves
// the sequencer on the last step, interactive for retry. On success the
// sequencer enters the done phase; resetting for a new session is the
// host's responsibility.
func (s *Sequencer) Complete(ctx context.Context) error {
	s.mu.Lock()
	if s.phaseLocked() != PhaseIdle {
		s.mu.Unlock()
		return nil
	}
	last := len(s.steps) - 1
	if s.current != last {
		s.mu.Unlock()
		return ErrNotLastStep
	}
	step := s.steps[last]
	s.generation++
	gen := s.generation
	s.lifecycle.Send(statekit.Event{Type: eventComplete})
	snapshot := s.bag.Snapshot()
	s.mu.Unlock()

	if step.Validate != nil {
		res := step.Validate(ctx, snapshot)
		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return nil
		}
		if !res.OK() {
			msg := res.Message()
			if msg == "" {
				msg = genericInvalidMessage
			}
			s.errs[last] = msg
			s.lifecycle.Send(statekit.Event{Type: eventFailed})
			s.mu.Unlock()
			return &StepInvalidError{Index: last, StepID: step.ID, Message: msg}
		}
		delete(s.errs, last)
		s.mu.Unlock()
	}

	fn := s.completeFn
	if fn != nil {
		if err := fn(ctx, s.bag.Snapshot()); err != nil {
			s.mu.Lock()
			if s.generation != gen {
				s.mu.Unlock()
				return nil
			}
			s.lifecycle.Send(statekit.Event{Type: eventFailed})
			s.mu.Unlock()
			return &CompletionError{Err: err}
		}
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return nil
	}
	s.lifecycle.Send(statekit.Event{Type: eventCompleted})
	s.mu.Unlock()
	return nil
}

// Reset returns the sequencer to step 0 with an empty data bag and no
// stored errors, and invalidates any in-flight validation or completion.
// Reset is never called implicitly; session boundaries belong to the host.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.generation++
	s.current = 0
	s.errs = make(map[int]string)
	s.completedOverride = make(map[int]bool)
	s.erroredOverride = make(map[int]bool)
	s.lifecycle.Send(statekit.Event{Type: eventReset})
	s.mu.Unlock()
	s.bag.Clear()
}

// SetCompletedOverride marks steps as completed for decoration, independent
// of the sequencer's own validation passes.
func (s *Sequencer) SetCompletedOverride(indices ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedOverride = make(map[int]bool, len(indices))
	for _, i := range indices {
		s.completedOverride[i] = true
	}
}

// SetErroredOverride marks steps as errored for decoration, independent of
// the sequencer's own validation state.
func (s *Sequencer) SetErroredOverride(indices ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.erroredOverride = make(map[int]bool, len(indices))
	for _, i := range indices {
		s.erroredOverride[i] = true
	}
}

// StepState returns the decoration state for a step index, combining the
// sequencer's own state with the external override sets.
func (s *Sequencer) StepState(index int) StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.steps) {
		return StepPending
	}
	switch {
	case s.steps[index].Disabled:
		return StepDisabled
	case index == s.current:
		return StepCurrent
	case s.erroredOverride[index]:
		return StepErrored
	default:
		if _, failed := s.errs[index]; failed {
			return StepErrored
		}
		if s.completedOverride[index] || index < s.current {
			return StepCompleted
		}
		return StepPending
	}
}
