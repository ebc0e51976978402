// Package components provides reusable TUI components built on Bubble Tea.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/passage-cli/passage/internal/tui/ui"
)

// OptionList is a navigable list of field options.
type OptionList struct {
	fieldKey string
	options  []string
	selected int
	height   int
	focused  bool
	keys     ui.KeyMap
	styles   ui.Styles
}

// NewOptionList creates an option list for the given field key.
func NewOptionList(fieldKey string, options []string) OptionList {
	return OptionList{
		fieldKey: fieldKey,
		options:  options,
		selected: 0,
		height:   8,
		keys:     ui.DefaultKeyMap(),
		styles:   ui.DefaultStyles(),
	}
}

// Options returns all options.
func (l OptionList) Options() []string {
	result := make([]string, len(l.options))
	copy(result, l.options)
	return result
}

// SelectedIndex returns the currently selected index.
func (l OptionList) SelectedIndex() int {
	return l.selected
}

// SelectedOption returns the currently selected option, or "" if empty.
func (l OptionList) SelectedOption() string {
	if len(l.options) == 0 {
		return ""
	}
	return l.options[l.selected]
}

// Focused reports whether the list receives key input.
func (l OptionList) Focused() bool {
	return l.focused
}

// Focus marks the list as active.
func (l OptionList) Focus() OptionList {
	l.focused = true
	return l
}

// Blur marks the list as inactive.
func (l OptionList) Blur() OptionList {
	l.focused = false
	return l
}

// WithSelected sets the selected option by value, if present.
func (l OptionList) WithSelected(option string) OptionList {
	for i, opt := range l.options {
		if opt == option {
			l.selected = i
			break
		}
	}
	return l
}

// WithHeight returns the list with a new visible height.
func (l OptionList) WithHeight(height int) OptionList {
	l.height = height
	return l
}

// WithStyles returns the list with custom styles.
func (l OptionList) WithStyles(styles ui.Styles) OptionList {
	l.styles = styles
	return l
}

// Init implements tea.Model.
func (l OptionList) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && l.focused {
		return l.handleKeyMsg(msg)
	}
	return l, nil
}

func (l OptionList) handleKeyMsg(msg tea.KeyMsg) (OptionList, tea.Cmd) {
	if len(l.options) == 0 {
		return l, nil
	}

	switch {
	case l.keys.IsUp(msg):
		if l.selected > 0 {
			l.selected--
		}
	case l.keys.IsDown(msg):
		if l.selected < len(l.options)-1 {
			l.selected++
		}
	case key.Matches(msg, l.keys.Select):
		return l, l.selectCmd()
	}

	return l, nil
}

func (l OptionList) selectCmd() tea.Cmd {
	option := l.options[l.selected]
	index := l.selected
	fieldKey := l.fieldKey
	return func() tea.Msg {
		return ui.NewSelectedMsg(fieldKey, index, option)
	}
}

// View implements tea.Model.
func (l OptionList) View() string {
	if len(l.options) == 0 {
		return l.styles.Help.Render("No options")
	}

	var b strings.Builder

	visibleCount := l.height
	if visibleCount > len(l.options) {
		visibleCount = len(l.options)
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}

	end := start + visibleCount
	if end > len(l.options) {
		end = len(l.options)
	}

	for i := start; i < end; i++ {
		if i == l.selected {
			b.WriteString(l.styles.ListItemActive.Render("▸ " + l.options[i]))
		} else {
			b.WriteString(l.styles.ListItem.Render("  " + l.options[i]))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
