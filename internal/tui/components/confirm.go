package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/passage-cli/passage/internal/tui/ui"
)

// Confirm is a yes/no toggle bound to a single field.
type Confirm struct {
	fieldKey string
	message  string
	yesLabel string
	noLabel  string
	value    bool
	focused  bool
	width    int
	keys     ui.KeyMap
	styles   ui.Styles
}

// NewConfirm creates a confirm toggle for the given field key.
func NewConfirm(fieldKey, message string) Confirm {
	return Confirm{
		fieldKey: fieldKey,
		message:  message,
		yesLabel: "Yes",
		noLabel:  "No",
		value:    true,
		width:    40,
		keys:     ui.DefaultKeyMap(),
		styles:   ui.DefaultStyles(),
	}
}

// Message returns the confirmation message.
func (c Confirm) Message() string {
	return c.message
}

// Value returns the current answer.
func (c Confirm) Value() bool {
	return c.value
}

// Focused reports whether the toggle receives key input.
func (c Confirm) Focused() bool {
	return c.focused
}

// Focus marks the toggle as active.
func (c Confirm) Focus() Confirm {
	c.focused = true
	return c
}

// Blur marks the toggle as inactive.
func (c Confirm) Blur() Confirm {
	c.focused = false
	return c
}

// WithValue sets the current answer.
func (c Confirm) WithValue(value bool) Confirm {
	c.value = value
	return c
}

// WithLabels sets the yes/no button labels.
func (c Confirm) WithLabels(yes, no string) Confirm {
	c.yesLabel = yes
	c.noLabel = no
	return c
}

// WithWidth sets the rendered width.
func (c Confirm) WithWidth(width int) Confirm {
	c.width = width
	return c
}

// WithStyles sets the styles.
func (c Confirm) WithStyles(styles ui.Styles) Confirm {
	c.styles = styles
	return c
}

// Init implements tea.Model.
func (c Confirm) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (c Confirm) Update(msg tea.Msg) (Confirm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && c.focused {
		return c.handleKeyMsg(msg)
	}
	return c, nil
}

func (c Confirm) handleKeyMsg(msg tea.KeyMsg) (Confirm, tea.Cmd) {
	switch {
	case key.Matches(msg, c.keys.Left):
		c.value = true
	case key.Matches(msg, c.keys.Right):
		c.value = false
	case key.Matches(msg, c.keys.Toggle):
		c.value = !c.value
	case key.Matches(msg, c.keys.Select):
		return c, c.confirmCmd(c.value)
	}
	return c, nil
}

func (c Confirm) confirmCmd(confirmed bool) tea.Cmd {
	fieldKey := c.fieldKey
	return func() tea.Msg {
		return ui.NewConfirmedMsg(fieldKey, confirmed)
	}
}

// View renders the confirm toggle.
func (c Confirm) View() string {
	message := c.styles.FieldLabel.Width(c.width).Render(c.message)

	yesStyle := c.styles.ListItem
	noStyle := c.styles.ListItem
	if c.value {
		yesStyle = c.styles.ListItemActive
	} else {
		noStyle = c.styles.ListItemActive
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		yesStyle.Render(c.yesLabel),
		"  ",
		noStyle.Render(c.noLabel),
	)

	return lipgloss.JoinVertical(lipgloss.Left, message, buttons)
}
