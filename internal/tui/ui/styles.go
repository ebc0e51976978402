// Package ui provides shared styles, key bindings, and messages for TUI components.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	ColorPrimary    = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	ColorSecondary  = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#cba6f7"} // Mauve
	ColorSuccess    = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	ColorWarning    = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	ColorError      = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	ColorMuted      = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
	ColorText       = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"} // Text
	ColorSubtle     = lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#a6adc8"} // Subtext0
	ColorBackground = lipgloss.AdaptiveColor{Light: "#eff1f5", Dark: "#1e1e2e"} // Base
	ColorSurface    = lipgloss.AdaptiveColor{Light: "#e6e9ef", Dark: "#313244"} // Surface0
)

// Styles contains reusable lipgloss styles for the TUI.
type Styles struct {
	// Base styles
	App       lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Paragraph lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Step indicator
	StepCurrent   lipgloss.Style
	StepCompleted lipgloss.Style
	StepErrored   lipgloss.Style
	StepPending   lipgloss.Style
	StepDisabled  lipgloss.Style

	// Fields
	FieldLabel  lipgloss.Style
	FieldError  lipgloss.Style
	Placeholder lipgloss.Style

	// List items
	ListItem       lipgloss.Style
	ListItemActive lipgloss.Style

	// Panels
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	// Help text
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Progress
	Spinner lipgloss.Style
}

// DefaultStyles returns the default TUI styles.
func DefaultStyles() Styles {
	return Styles{
		// Base styles
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(ColorSecondary),

		Paragraph: lipgloss.NewStyle().
			Foreground(ColorText),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),

		Error: lipgloss.NewStyle().
			Foreground(ColorError),

		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		// Step indicator
		StepCurrent: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),

		StepCompleted: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		StepErrored: lipgloss.NewStyle().
			Foreground(ColorError),

		StepPending: lipgloss.NewStyle().
			Foreground(ColorSubtle),

		StepDisabled: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Strikethrough(true),

		// Fields
		FieldLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText),

		FieldError: lipgloss.NewStyle().
			Foreground(ColorError),

		Placeholder: lipgloss.NewStyle().
			Foreground(ColorMuted),

		// List items
		ListItem: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(ColorText),

		ListItemActive: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(ColorPrimary).
			Bold(true),

		// Panels
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(1, 2),

		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),

		// Help text
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),

		HelpKey: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),

		// Progress
		Spinner: lipgloss.NewStyle().
			Foreground(ColorPrimary),
	}
}

// PlainStyles returns styles that keep the layout but drop all colouring,
// for --no-color runs and dumb terminals. Bold and strikethrough survive so
// the step rail stays legible.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		App:       plain.Padding(1, 2),
		Title:     plain.Bold(true).MarginBottom(1),
		Subtitle:  plain,
		Paragraph: plain,

		Success: plain,
		Warning: plain,
		Error:   plain,
		Info:    plain,

		StepCurrent:   plain.Bold(true),
		StepCompleted: plain,
		StepErrored:   plain,
		StepPending:   plain,
		StepDisabled:  plain.Strikethrough(true),

		FieldLabel:  plain.Bold(true),
		FieldError:  plain,
		Placeholder: plain,

		ListItem:       plain.PaddingLeft(2),
		ListItemActive: plain.PaddingLeft(2).Bold(true),

		Panel:      plain.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		PanelTitle: plain.Bold(true).MarginBottom(1),

		Help:    plain,
		HelpKey: plain.Bold(true),

		Spinner: plain,
	}
}

// StylesFor selects the style set for the colour toggle.
func StylesFor(noColor bool) Styles {
	if noColor {
		return PlainStyles()
	}
	return DefaultStyles()
}

// WithWidth returns styles adapted for a specific terminal width.
func (s Styles) WithWidth(width int) Styles {
	s.Panel = s.Panel.Width(width - 4)
	s.App = s.App.Width(width)
	return s
}
