package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passage-cli/passage/internal/tui/ui"
)

func TestNewOptionList(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"conservative", "balanced", "aggressive"})

	assert.Equal(t, 0, l.SelectedIndex())
	assert.Equal(t, "conservative", l.SelectedOption())
	assert.Len(t, l.Options(), 3)
	assert.False(t, l.Focused())
}

func TestOptionList_Navigation(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"a", "b", "c"}).Focus()

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.SelectedIndex())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, l.SelectedIndex())

	// Clamped at the end
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, l.SelectedIndex())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, l.SelectedIndex())
}

func TestOptionList_IgnoresKeysWhenBlurred(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"a", "b"})

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, l.SelectedIndex())
}

func TestOptionList_SelectEmitsMsg(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"a", "b"}).Focus()
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(ui.SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "strategy", msg.ID)
	assert.Equal(t, "b", msg.Value)
	assert.Equal(t, 1, msg.Index)
}

func TestOptionList_WithSelected(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"a", "b", "c"}).WithSelected("c")
	assert.Equal(t, "c", l.SelectedOption())

	l = l.WithSelected("unknown")
	assert.Equal(t, "c", l.SelectedOption())
}

func TestOptionList_View(t *testing.T) {
	t.Parallel()

	l := NewOptionList("strategy", []string{"alpha", "beta"})
	view := l.View()

	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "beta")
	assert.Contains(t, view, "▸")

	empty := NewOptionList("x", nil)
	assert.Contains(t, empty.View(), "No options")
}
