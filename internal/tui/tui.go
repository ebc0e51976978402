// Package tui provides terminal user interface entry points for passage.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/passage-cli/passage/internal/domain/flowdef"
	"github.com/passage-cli/passage/internal/domain/wizard"
)

// WizardOptions configures the interactive wizard run.
type WizardOptions struct {
	// Seed is merged into the data bag before the first step renders,
	// typically from a resumed session.
	Seed map[string]any

	// StartStepID positions the wizard on a step other than the first.
	StartStepID string

	// AllowStepJump permits forward jumps from the step rail.
	AllowStepJump bool

	// NoColor renders the wizard without colours.
	NoColor bool

	// Complete runs when the final step validates.
	Complete wizard.CompleteFunc
}

// NewWizardOptions creates default wizard options.
func NewWizardOptions() WizardOptions {
	return WizardOptions{}
}

// WithSeed sets the initial data bag contents.
func (o WizardOptions) WithSeed(seed map[string]any) WizardOptions {
	o.Seed = seed
	return o
}

// WithStartStep sets the initial step by ID.
func (o WizardOptions) WithStartStep(stepID string) WizardOptions {
	o.StartStepID = stepID
	return o
}

// WithAllowStepJump permits forward jumps.
func (o WizardOptions) WithAllowStepJump(allow bool) WizardOptions {
	o.AllowStepJump = allow
	return o
}

// WithNoColor disables coloured output.
func (o WizardOptions) WithNoColor(noColor bool) WizardOptions {
	o.NoColor = noColor
	return o
}

// WithComplete sets the completion handler.
func (o WizardOptions) WithComplete(fn wizard.CompleteFunc) WizardOptions {
	o.Complete = fn
	return o
}

// WizardResult holds the outcome of a wizard run.
type WizardResult struct {
	Data       map[string]any
	StepID     string
	StepErrors map[string]string
	Completed  bool
	Cancelled  bool
}

// RunWizard runs the flow interactively and returns the collected data.
func RunWizard(ctx context.Context, def *flowdef.Definition, opts WizardOptions) (*WizardResult, error) {
	seq, err := newSequencer(ctx, def, opts)
	if err != nil {
		return nil, err
	}

	model := newWizardModel(ctx, seq, def, opts)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	m, ok := finalModel.(wizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return &WizardResult{
		Data:       seq.Data(),
		StepID:     seq.CurrentStep().ID,
		StepErrors: stepErrorsByID(seq),
		Completed:  m.done,
		Cancelled:  m.cancelled,
	}, nil
}

func newSequencer(ctx context.Context, def *flowdef.Definition, opts WizardOptions) (*wizard.Sequencer, error) {
	var seqOpts []wizard.Option
	if opts.AllowStepJump {
		seqOpts = append(seqOpts, wizard.WithAllowStepJump(true))
	}
	if opts.Complete != nil {
		seqOpts = append(seqOpts, wizard.WithCompleteFunc(opts.Complete))
	}

	seq, err := wizard.NewSequencer(def.Build(), seqOpts...)
	if err != nil {
		return nil, err
	}

	if len(opts.Seed) > 0 {
		seq.UpdateData(opts.Seed)
	}
	if opts.StartStepID != "" {
		positionAt(ctx, seq, opts.StartStepID)
	}
	return seq, nil
}

// positionAt walks the sequencer forward to the resumed step. Validation
// still gates each move, so a stale session cannot skip past broken input.
func positionAt(ctx context.Context, seq *wizard.Sequencer, stepID string) {
	steps := seq.Steps()
	for i, s := range steps {
		if s.ID != stepID {
			continue
		}
		for seq.CurrentIndex() < i {
			before := seq.CurrentIndex()
			if err := seq.Next(ctx); err != nil || seq.CurrentIndex() == before {
				return
			}
		}
		return
	}
}

func stepErrorsByID(seq *wizard.Sequencer) map[string]string {
	out := make(map[string]string)
	steps := seq.Steps()
	for i, msg := range seq.ValidationErrors() {
		if i >= 0 && i < len(steps) {
			out[steps[i].ID] = msg
		}
	}
	return out
}
