package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/passage-cli/passage/internal/tui/ui"
)

// TextField is a labelled single-line input bound to a field key.
type TextField struct {
	fieldKey string
	label    string
	errMsg   string
	input    textinput.Model
	styles   ui.Styles
}

// NewTextField creates a text field for the given field key.
func NewTextField(fieldKey, label string) TextField {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 256
	return TextField{
		fieldKey: fieldKey,
		label:    label,
		input:    input,
		styles:   ui.DefaultStyles(),
	}
}

// Key returns the bound field key.
func (f TextField) Key() string {
	return f.fieldKey
}

// Label returns the field label.
func (f TextField) Label() string {
	return f.label
}

// Value returns the current input value.
func (f TextField) Value() string {
	return f.input.Value()
}

// Focused reports whether the input receives key input.
func (f TextField) Focused() bool {
	return f.input.Focused()
}

// Focus marks the input as active.
func (f TextField) Focus() TextField {
	f.input.Focus()
	return f
}

// Blur marks the input as inactive.
func (f TextField) Blur() TextField {
	f.input.Blur()
	return f
}

// WithValue sets the input value.
func (f TextField) WithValue(value string) TextField {
	f.input.SetValue(value)
	return f
}

// WithPlaceholder sets the placeholder text.
func (f TextField) WithPlaceholder(placeholder string) TextField {
	f.input.Placeholder = placeholder
	return f
}

// WithError sets an inline validation message shown under the input.
func (f TextField) WithError(msg string) TextField {
	f.errMsg = msg
	return f
}

// WithStyles sets the styles.
func (f TextField) WithStyles(styles ui.Styles) TextField {
	f.styles = styles
	return f
}

// Init implements tea.Model.
func (f TextField) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f TextField) Update(msg tea.Msg) (TextField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the labelled input.
func (f TextField) View() string {
	out := f.styles.FieldLabel.Render(f.label) + "\n" + f.input.View()
	if f.errMsg != "" {
		out += "\n" + f.styles.FieldError.Render("✗ "+f.errMsg)
	}
	return out
}
