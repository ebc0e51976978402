package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewTextField(t *testing.T) {
	t.Parallel()

	f := NewTextField("symbol", "Symbol")

	assert.Equal(t, "symbol", f.Key())
	assert.Equal(t, "Symbol", f.Label())
	assert.Empty(t, f.Value())
	assert.False(t, f.Focused())
}

func TestTextField_Typing(t *testing.T) {
	t.Parallel()

	f := NewTextField("symbol", "Symbol").Focus()

	for _, r := range "AAPL" {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "AAPL", f.Value())
}

func TestTextField_WithValue(t *testing.T) {
	t.Parallel()

	f := NewTextField("symbol", "Symbol").WithValue("MSFT")
	assert.Equal(t, "MSFT", f.Value())
}

func TestTextField_View(t *testing.T) {
	t.Parallel()

	f := NewTextField("symbol", "Symbol").
		WithPlaceholder("e.g. AAPL").
		WithError("value is required")

	view := f.View()
	assert.Contains(t, view, "Symbol")
	assert.Contains(t, view, "value is required")
}
