package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/passage-cli/passage/internal/domain/wizard"
	"github.com/passage-cli/passage/internal/tui/ui"
)

// StepInfo is one entry in the step rail.
type StepInfo struct {
	Title    string
	Optional bool
	State    wizard.StepState
}

// StepIndicator renders the progress rail across wizard steps.
type StepIndicator struct {
	steps  []StepInfo
	styles ui.Styles
}

// NewStepIndicator creates a step indicator.
func NewStepIndicator(steps []StepInfo) StepIndicator {
	return StepIndicator{
		steps:  steps,
		styles: ui.DefaultStyles(),
	}
}

// Steps returns the rail entries.
func (si StepIndicator) Steps() []StepInfo {
	result := make([]StepInfo, len(si.steps))
	copy(result, si.steps)
	return result
}

// WithSteps replaces the rail entries.
func (si StepIndicator) WithSteps(steps []StepInfo) StepIndicator {
	si.steps = steps
	return si
}

// WithStyles sets the styles.
func (si StepIndicator) WithStyles(styles ui.Styles) StepIndicator {
	si.styles = styles
	return si
}

// View renders the rail, one line per step.
func (si StepIndicator) View() string {
	var b strings.Builder

	for i, step := range si.steps {
		marker, style := si.render(step.State)

		title := step.Title
		if step.Optional {
			title += " (optional)"
		}

		b.WriteString(style.Render(fmt.Sprintf("%s %d. %s", marker, i+1, title)))
		if i < len(si.steps)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (si StepIndicator) render(state wizard.StepState) (string, lipgloss.Style) {
	switch state {
	case wizard.StepCurrent:
		return "●", si.styles.StepCurrent
	case wizard.StepCompleted:
		return "✓", si.styles.StepCompleted
	case wizard.StepErrored:
		return "✗", si.styles.StepErrored
	case wizard.StepDisabled:
		return "−", si.styles.StepDisabled
	default:
		return "○", si.styles.StepPending
	}
}
