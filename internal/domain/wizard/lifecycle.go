package wizard

import "github.com/felixgeelhaar/statekit"

// Phase is the sequencer's lifecycle phase. Exactly one validation or
// completion call is in flight at a time; while one is pending the phase
// leaves "idle" and navigation is ignored.
type Phase string

const (
	// PhaseIdle indicates the sequencer accepts navigation.
	PhaseIdle Phase = "idle"
	// PhaseValidating indicates a step validation is in flight.
	PhaseValidating Phase = "validating"
	// PhaseCompleting indicates the completion handler is in flight.
	PhaseCompleting Phase = "completing"
	// PhaseDone indicates the completion handler succeeded. Only Reset
	// leaves this phase; starting a new session is the host's call.
	PhaseDone Phase = "done"
)

// Event types for the lifecycle state machine.
const (
	eventValidate  = "VALIDATE"
	eventValid     = "VALID"
	eventInvalid   = "INVALID"
	eventComplete  = "COMPLETE"
	eventCompleted = "COMPLETED"
	eventFailed    = "FAILED"
	eventReset     = "RESET"
)

// lifecycleContext is the statekit context for the sequencer machine. The
// sequencer keeps its own mutable state under lock, so the machine context
// carries nothing.
type lifecycleContext struct{}

// newLifecycle constructs the sequencer lifecycle machine. RESET is accepted
// from every state: a reset during an in-flight call returns the machine to
// idle immediately and the stale resolution is discarded by the generation
// check.
func newLifecycle() (*statekit.Interpreter[lifecycleContext], error) {
	machine, err := statekit.NewMachine[lifecycleContext]("wizard-sequencer").
		WithInitial(statekit.StateID(PhaseIdle)).
		WithContext(lifecycleContext{}).
		State(statekit.StateID(PhaseIdle)).
		On(eventValidate).Target(statekit.StateID(PhaseValidating)).
		On(eventComplete).Target(statekit.StateID(PhaseCompleting)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseValidating)).
		On(eventValid).Target(statekit.StateID(PhaseIdle)).
		On(eventInvalid).Target(statekit.StateID(PhaseIdle)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseCompleting)).
		On(eventCompleted).Target(statekit.StateID(PhaseDone)).
		On(eventFailed).Target(statekit.StateID(PhaseIdle)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseDone)).
		On(eventReset).Target(statekit.StateID(PhaseIdle)).Done().
		Build()
	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}
