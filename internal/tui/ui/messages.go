package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorMsg carries an error out of an asynchronous command.
type ErrorMsg struct {
	Err error
}

func (e ErrorMsg) Error() string {
	return e.Err.Error()
}

// SelectedMsg indicates an item was selected for a field.
type SelectedMsg struct {
	ID    string
	Index int
	Value interface{}
}

// ConfirmedMsg indicates a confirmation answer for a field.
type ConfirmedMsg struct {
	ID        string
	Confirmed bool
}

// QuitMsg requests to quit the application.
type QuitMsg struct{}

// NewErrorMsg creates a new error message.
func NewErrorMsg(err error) tea.Msg {
	return ErrorMsg{Err: err}
}

// NewSelectedMsg creates a new selection message.
func NewSelectedMsg(id string, index int, value interface{}) tea.Msg {
	return SelectedMsg{
		ID:    id,
		Index: index,
		Value: value,
	}
}

// NewConfirmedMsg creates a new confirmation message.
func NewConfirmedMsg(id string, confirmed bool) tea.Msg {
	return ConfirmedMsg{ID: id, Confirmed: confirmed}
}

// NewQuitMsg creates a new quit request.
func NewQuitMsg() tea.Msg {
	return QuitMsg{}
}
