package wizard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeSteps() []Step {
	return []Step{
		{ID: "first", Title: "First"},
		{ID: "second", Title: "Second"},
		{ID: "third", Title: "Third"},
	}
}

func TestNewSequencer(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	assert.Equal(t, 0, seq.CurrentIndex())
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, "first", seq.CurrentStep().ID)
	assert.Equal(t, PhaseIdle, seq.Phase())
	assert.Empty(t, seq.Data())
}

func TestNewSequencer_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		steps []Step
	}{
		{name: "empty", steps: nil},
		{name: "missing ID", steps: []Step{{Title: "Anonymous"}}},
		{name: "duplicate ID", steps: []Step{{ID: "a"}, {ID: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSequencer(tt.steps)
			assert.Error(t, err)
		})
	}
}

func TestNext_ValidStepAdvances(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	require.NoError(t, seq.Next(context.Background()))

	assert.Equal(t, 1, seq.CurrentIndex())
	_, hasErr := seq.ValidationError(0)
	assert.False(t, hasErr)
}

func TestNext_InvalidStepBlocks(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[1].Validate = func(_ context.Context, _ map[string]any) Result {
		return Invalid("Name required")
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.Equal(t, 1, seq.CurrentIndex())

	err = seq.Next(context.Background())

	var stepErr *StepInvalidError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)
	assert.Equal(t, "second", stepErr.StepID)
	assert.Equal(t, 1, seq.CurrentIndex())
	msg, ok := seq.ValidationError(1)
	assert.True(t, ok)
	assert.Equal(t, "Name required", msg)
}

func TestNext_EmptyFailureMessageGetsGeneric(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		return Invalid("")
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	err = seq.Next(context.Background())

	require.Error(t, err)
	msg, ok := seq.ValidationError(0)
	assert.True(t, ok)
	assert.Equal(t, "validation failed", msg)
}

func TestNext_ErrorClearsOnSuccess(t *testing.T) {
	t.Parallel()

	pass := false
	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		if pass {
			return Valid()
		}
		return Invalid("not yet")
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	require.Error(t, seq.Next(context.Background()))
	_, ok := seq.ValidationError(0)
	require.True(t, ok)

	pass = true
	require.NoError(t, seq.Next(context.Background()))

	assert.Equal(t, 1, seq.CurrentIndex())
	_, ok = seq.ValidationError(0)
	assert.False(t, ok)
}

func TestPrev_AlwaysSucceedsWithoutValidation(t *testing.T) {
	t.Parallel()

	calls := 0
	steps := threeSteps()
	for i := range steps {
		steps[i].Validate = func(_ context.Context, _ map[string]any) Result {
			calls++
			return Valid()
		}
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))
	require.Equal(t, 2, seq.CurrentIndex())
	calls = 0

	require.NoError(t, seq.Prev(context.Background()))
	require.NoError(t, seq.Prev(context.Background()))

	assert.Equal(t, 0, seq.CurrentIndex())
	assert.Zero(t, calls, "backward moves must not invoke validators")
}

func TestPrev_AtFirstStepIsNoOp(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	require.NoError(t, seq.Prev(context.Background()))

	assert.Equal(t, 0, seq.CurrentIndex())
}

func TestGoToStep_DisabledStepUnreachable(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[1].Disabled = true
	seq, err := NewSequencer(steps, WithAllowStepJump(true))
	require.NoError(t, err)

	require.NoError(t, seq.GoToStep(context.Background(), 1))
	assert.Equal(t, 0, seq.CurrentIndex())

	// Disabled steps are unreachable backward too.
	require.NoError(t, seq.GoToStep(context.Background(), 2))
	require.Equal(t, 2, seq.CurrentIndex())
	require.NoError(t, seq.GoToStep(context.Background(), 1))
	assert.Equal(t, 2, seq.CurrentIndex())
}

func TestGoToStep_JumpDisabledByDefault(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	require.NoError(t, seq.GoToStep(context.Background(), 2))

	assert.Equal(t, 0, seq.CurrentIndex())
}

func TestGoToStep_OutOfRangeIsNoOp(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps(), WithAllowStepJump(true))
	require.NoError(t, err)

	require.NoError(t, seq.GoToStep(context.Background(), -1))
	require.NoError(t, seq.GoToStep(context.Background(), 3))

	assert.Equal(t, 0, seq.CurrentIndex())
}

func TestGoToStep_ForwardJumpValidatesCurrentStepOnly(t *testing.T) {
	t.Parallel()

	validated := make([]string, 0, 1)
	steps := threeSteps()
	for i := range steps {
		id := steps[i].ID
		steps[i].Validate = func(_ context.Context, _ map[string]any) Result {
			validated = append(validated, id)
			return Valid()
		}
	}
	seq, err := NewSequencer(steps, WithAllowStepJump(true))
	require.NoError(t, err)

	require.NoError(t, seq.GoToStep(context.Background(), 2))

	assert.Equal(t, 2, seq.CurrentIndex())
	assert.Equal(t, []string{"first"}, validated)
}

func TestOptionalStep_StillValidates(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Optional = true
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		return Invalid("still required")
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	err = seq.Next(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, seq.CurrentIndex())
}

func TestOptionalStep_WithoutValidatorPasses(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Optional = true
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	require.NoError(t, seq.Next(context.Background()))

	assert.Equal(t, 1, seq.CurrentIndex())
}

func TestUpdateData_Accumulates(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	seq.UpdateData(map[string]any{"a": 1})
	seq.UpdateData(map[string]any{"b": 2})

	data := seq.Data()
	assert.Equal(t, 1, data["a"])
	assert.Equal(t, 2, data["b"])

	seq.UpdateData(map[string]any{"a": 3})

	data = seq.Data()
	assert.Equal(t, 3, data["a"])
	assert.Equal(t, 2, data["b"])
}

func TestUpdateData_NotifiesObserver(t *testing.T) {
	t.Parallel()

	var observed map[string]any
	seq, err := NewSequencer(threeSteps(), WithOnDataChange(func(data map[string]any) {
		observed = data
	}))
	require.NoError(t, err)

	seq.UpdateData(map[string]any{"name": "atlas"})

	require.NotNil(t, observed)
	assert.Equal(t, "atlas", observed["name"])
}

func TestValidate_ReceivesDataSnapshot(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, data map[string]any) Result {
		if data["name"] == "" || data["name"] == nil {
			return Invalid("name required")
		}
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	require.Error(t, seq.Next(context.Background()))

	seq.UpdateData(map[string]any{"name": "atlas"})
	require.NoError(t, seq.Next(context.Background()))
	assert.Equal(t, 1, seq.CurrentIndex())
}

func TestSingleInFlightValidation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		calls.Add(1)
		close(started)
		<-release
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = seq.Next(context.Background())
	}()

	<-started
	assert.True(t, seq.Validating())

	// A second trigger while validation is pending is ignored, not queued.
	require.NoError(t, seq.Next(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	wg.Wait()

	assert.Equal(t, 1, seq.CurrentIndex())
	assert.Equal(t, PhaseIdle, seq.Phase())
	assert.Equal(t, int32(1), calls.Load())
}

func TestReset_DiscardsInFlightValidation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		close(started)
		<-release
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)
	seq.UpdateData(map[string]any{"a": 1})

	done := make(chan error, 1)
	go func() {
		done <- seq.Next(context.Background())
	}()

	<-started
	seq.Reset()
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, seq.CurrentIndex(), "stale validation must not move the index")
	assert.Equal(t, PhaseIdle, seq.Phase())
	assert.Empty(t, seq.Data())
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var handed map[string]any
	steps := threeSteps()
	steps[2].Validate = func(_ context.Context, _ map[string]any) Result {
		return Valid()
	}
	seq, err := NewSequencer(steps, WithCompleteFunc(func(_ context.Context, data map[string]any) error {
		handed = data
		return nil
	}))
	require.NoError(t, err)
	seq.UpdateData(map[string]any{"name": "atlas", "threshold": 0.5})
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))

	require.NoError(t, seq.Complete(context.Background()))

	assert.True(t, seq.Done())
	require.NotNil(t, handed)
	assert.Equal(t, "atlas", handed["name"])
	assert.Equal(t, 0.5, handed["threshold"])
	// The sequencer does not reset itself after completion.
	assert.Equal(t, 2, seq.CurrentIndex())
}

func TestComplete_NotOnLastStep(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	err = seq.Complete(context.Background())

	assert.ErrorIs(t, err, ErrNotLastStep)
}

func TestComplete_LastStepValidationFails(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[2].Validate = func(_ context.Context, _ map[string]any) Result {
		return Invalid("confirm required")
	}
	handlerCalled := false
	seq, err := NewSequencer(steps, WithCompleteFunc(func(_ context.Context, _ map[string]any) error {
		handlerCalled = true
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))

	err = seq.Complete(context.Background())

	var stepErr *StepInvalidError
	require.ErrorAs(t, err, &stepErr)
	assert.False(t, handlerCalled)
	assert.Equal(t, 2, seq.CurrentIndex())
	assert.Equal(t, PhaseIdle, seq.Phase())
	msg, ok := seq.ValidationError(2)
	assert.True(t, ok)
	assert.Equal(t, "confirm required", msg)
}

func TestComplete_HandlerFailureAllowsRetry(t *testing.T) {
	t.Parallel()

	attempts := 0
	seq, err := NewSequencer(threeSteps(), WithCompleteFunc(func(_ context.Context, _ map[string]any) error {
		attempts++
		if attempts == 1 {
			return errors.New("remote store unavailable")
		}
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))

	err = seq.Complete(context.Background())

	var compErr *CompletionError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, 2, seq.CurrentIndex())
	assert.Equal(t, PhaseIdle, seq.Phase(), "sequencer stays interactive for retry")

	require.NoError(t, seq.Complete(context.Background()))
	assert.True(t, seq.Done())
	assert.Equal(t, 2, attempts)
}

func TestComplete_NavigationIgnoredWhileDone(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Complete(context.Background()))

	require.NoError(t, seq.Prev(context.Background()))

	assert.Equal(t, 2, seq.CurrentIndex())
	assert.True(t, seq.Done())
}

func TestReset_ReturnsToInitialState(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)
	seq.UpdateData(map[string]any{"a": 1})
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Complete(context.Background()))
	require.True(t, seq.Done())

	seq.Reset()

	assert.Equal(t, 0, seq.CurrentIndex())
	assert.Equal(t, PhaseIdle, seq.Phase())
	assert.Empty(t, seq.Data())
	assert.Empty(t, seq.ValidationErrors())
}

func TestStepChangeObserver(t *testing.T) {
	t.Parallel()

	type move struct{ from, to int }
	var moves []move
	seq, err := NewSequencer(threeSteps(), WithOnStepChange(func(from, to int) {
		moves = append(moves, move{from, to})
	}))
	require.NoError(t, err)

	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Next(context.Background()))
	require.NoError(t, seq.Prev(context.Background()))

	assert.Equal(t, []move{{0, 1}, {1, 2}, {2, 1}}, moves)
}

func TestStepState(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{ID: "a"},
		{ID: "b", Validate: func(_ context.Context, _ map[string]any) Result {
			return Invalid("nope")
		}},
		{ID: "c", Disabled: true},
		{ID: "d"},
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)
	require.NoError(t, seq.Next(context.Background()))
	require.Error(t, seq.Next(context.Background()))

	assert.Equal(t, StepCompleted, seq.StepState(0))
	assert.Equal(t, StepCurrent, seq.StepState(1))
	assert.Equal(t, StepDisabled, seq.StepState(2))
	assert.Equal(t, StepPending, seq.StepState(3))
}

func TestStepState_Overrides(t *testing.T) {
	t.Parallel()

	seq, err := NewSequencer(threeSteps())
	require.NoError(t, err)

	seq.SetCompletedOverride(2)
	seq.SetErroredOverride(1)

	assert.Equal(t, StepCurrent, seq.StepState(0))
	assert.Equal(t, StepErrored, seq.StepState(1))
	assert.Equal(t, StepCompleted, seq.StepState(2))
}

func TestValidate_ContextIsPassedThrough(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	steps := threeSteps()
	steps[0].Validate = func(ctx context.Context, _ map[string]any) Result {
		if ctx.Value(ctxKey{}) != "marker" {
			return Invalid("missing context value")
		}
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	require.NoError(t, seq.Next(ctx))
	assert.Equal(t, 1, seq.CurrentIndex())
}

func TestSlowValidation_EventuallyAdvances(t *testing.T) {
	t.Parallel()

	steps := threeSteps()
	steps[0].Validate = func(_ context.Context, _ map[string]any) Result {
		time.Sleep(10 * time.Millisecond)
		return Valid()
	}
	seq, err := NewSequencer(steps)
	require.NoError(t, err)

	require.NoError(t, seq.Next(context.Background()))

	assert.Equal(t, 1, seq.CurrentIndex())
	assert.Equal(t, PhaseIdle, seq.Phase())
}
