package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/passage-cli/passage/internal/domain/flowdef"
	"github.com/passage-cli/passage/internal/domain/wizard"
	"github.com/passage-cli/passage/internal/tui/components"
	"github.com/passage-cli/passage/internal/tui/ui"
)

// stepAdvancedMsg reports a successful async forward move. Failures arrive
// as ui.ErrorMsg instead.
type stepAdvancedMsg struct{}

// flowCompletedMsg reports a successful async completion.
type flowCompletedMsg struct{}

// fieldInput pairs a field declaration with its active component.
type fieldInput struct {
	def  flowdef.FieldDef
	text components.TextField
	sel  components.OptionList
	conf components.Confirm
}

func (f fieldInput) kind() string {
	if f.def.Kind == "" {
		return flowdef.KindText
	}
	return f.def.Kind
}

// wizardModel drives a flow definition through the step sequencer.
type wizardModel struct {
	ctx    context.Context
	seq    *wizard.Sequencer
	def    *flowdef.Definition
	styles ui.Styles
	keys   ui.KeyMap
	width  int
	height int

	fields    []fieldInput
	focusIdx  int
	busy      bool
	errMsg    string
	allowJump bool

	cancelled bool
	done      bool
}

func newWizardModel(ctx context.Context, seq *wizard.Sequencer, def *flowdef.Definition, opts WizardOptions) wizardModel {
	m := wizardModel{
		ctx:       ctx,
		seq:       seq,
		def:       def,
		styles:    ui.StylesFor(opts.NoColor),
		keys:      ui.DefaultKeyMap(),
		width:     80,
		height:    24,
		allowJump: opts.AllowStepJump,
	}
	m.rebuildFields()
	return m
}

// rebuildFields creates components for the current step, prefilled from the
// data bag so backward navigation keeps entered values.
func (m *wizardModel) rebuildFields() {
	step := m.seq.CurrentStep()
	def, ok := m.def.StepByID(step.ID)
	if !ok {
		m.fields = nil
		return
	}

	data := m.seq.Data()
	m.fields = make([]fieldInput, 0, len(def.Fields))
	for _, fd := range def.Fields {
		fi := fieldInput{def: fd}
		label := fd.Label
		if label == "" {
			label = fd.Key
		}

		switch fd.Kind {
		case flowdef.KindSelect:
			sel := components.NewOptionList(fd.Key, fd.Options).WithStyles(m.styles)
			if v, ok := data[fd.Key].(string); ok {
				sel = sel.WithSelected(v)
			} else if fd.Default != "" {
				sel = sel.WithSelected(fd.Default)
			}
			fi.sel = sel
		case flowdef.KindConfirm:
			conf := components.NewConfirm(fd.Key, label).WithStyles(m.styles)
			if v, ok := data[fd.Key].(bool); ok {
				conf = conf.WithValue(v)
			}
			fi.conf = conf
		default:
			text := components.NewTextField(fd.Key, label).
				WithPlaceholder(fd.Placeholder).
				WithStyles(m.styles)
			if v, ok := data[fd.Key].(string); ok {
				text = text.WithValue(v)
			} else if fd.Default != "" {
				text = text.WithValue(fd.Default)
			}
			fi.text = text
		}
		m.fields = append(m.fields, fi)
	}

	m.focusIdx = 0
	m.errMsg = ""
	if msg, ok := m.seq.ValidationError(m.seq.CurrentIndex()); ok {
		m.errMsg = msg
	}
	m.applyFocus()
}

func (m *wizardModel) applyFocus() {
	for i := range m.fields {
		focused := i == m.focusIdx
		switch m.fields[i].kind() {
		case flowdef.KindSelect:
			if focused {
				m.fields[i].sel = m.fields[i].sel.Focus()
			} else {
				m.fields[i].sel = m.fields[i].sel.Blur()
			}
		case flowdef.KindConfirm:
			if focused {
				m.fields[i].conf = m.fields[i].conf.Focus()
			} else {
				m.fields[i].conf = m.fields[i].conf.Blur()
			}
		default:
			if focused {
				m.fields[i].text = m.fields[i].text.Focus()
			} else {
				m.fields[i].text = m.fields[i].text.Blur()
			}
		}
	}
}

// collectValues reads every component's current value into a merge payload.
func (m wizardModel) collectValues() map[string]any {
	values := make(map[string]any, len(m.fields))
	for _, fi := range m.fields {
		switch fi.kind() {
		case flowdef.KindSelect:
			if opt := fi.sel.SelectedOption(); opt != "" {
				values[fi.def.Key] = opt
			}
		case flowdef.KindConfirm:
			values[fi.def.Key] = fi.conf.Value()
		default:
			values[fi.def.Key] = fi.text.Value()
		}
	}
	return values
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.styles = m.styles.WithWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ui.SelectedMsg, ui.ConfirmedMsg:
		// A component-level select counts as moving on.
		return m.advanceFocus()

	case ui.ErrorMsg:
		m.busy = false
		m.errMsg = stepErrorMessage(msg.Err)
		return m, nil

	case ui.QuitMsg:
		m.cancelled = true
		return m, tea.Quit

	case stepAdvancedMsg:
		m.busy = false
		m.rebuildFields()
		return m, nil

	case flowCompletedMsg:
		m.busy = false
		m.done = true
		return m, tea.Quit
	}

	return m.updateFocusedField(msg)
}

func (m wizardModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, ui.NewQuitMsg

	case key.Matches(msg, m.keys.Back):
		if m.busy {
			return m, nil
		}
		if m.seq.CurrentIndex() == 0 {
			return m, ui.NewQuitMsg
		}
		m.seq.UpdateData(m.collectValues())
		_ = m.seq.Prev(m.ctx)
		m.rebuildFields()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if m.busy {
			return m, nil
		}
		if m.focusIdx < len(m.fields)-1 {
			return m.advanceFocus()
		}
		return m.submit()

	case key.Matches(msg, m.keys.NextField):
		if len(m.fields) > 1 {
			return m.advanceFocus()
		}

	case key.Matches(msg, m.keys.Jump):
		if target, ok := m.jumpTarget(msg); ok {
			return m.jumpTo(target)
		}
	}

	return m.updateFocusedField(msg)
}

// jumpTarget maps a digit key to a step index. Digits stay ordinary input
// while a text field is focused, so jumps only fire from select and confirm
// steps.
func (m wizardModel) jumpTarget(msg tea.KeyMsg) (int, bool) {
	if !m.allowJump || m.busy {
		return 0, false
	}
	if len(m.fields) > 0 && m.focusIdx < len(m.fields) && m.fields[m.focusIdx].kind() == flowdef.KindText {
		return 0, false
	}
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// jumpTo merges the step's values and navigates directly to target. The
// sequencer decides whether the jump is legal.
func (m wizardModel) jumpTo(target int) (tea.Model, tea.Cmd) {
	m.seq.UpdateData(m.collectValues())
	m.busy = true
	m.errMsg = ""

	seq := m.seq
	ctx := m.ctx
	return m, func() tea.Msg {
		if err := seq.GoToStep(ctx, target); err != nil {
			return ui.NewErrorMsg(err)
		}
		return stepAdvancedMsg{}
	}
}

func (m wizardModel) advanceFocus() (tea.Model, tea.Cmd) {
	if m.focusIdx < len(m.fields)-1 {
		m.focusIdx++
		m.applyFocus()
		return m, nil
	}
	return m.submit()
}

// submit merges the step's values and kicks off async validation. The
// sequencer ignores overlapping moves, but the busy flag keeps the UI from
// issuing them at all.
func (m wizardModel) submit() (tea.Model, tea.Cmd) {
	m.seq.UpdateData(m.collectValues())
	m.busy = true
	m.errMsg = ""

	seq := m.seq
	ctx := m.ctx
	if seq.OnLastStep() {
		return m, func() tea.Msg {
			if err := seq.Complete(ctx); err != nil {
				return ui.NewErrorMsg(err)
			}
			return flowCompletedMsg{}
		}
	}
	return m, func() tea.Msg {
		if err := seq.Next(ctx); err != nil {
			return ui.NewErrorMsg(err)
		}
		return stepAdvancedMsg{}
	}
}

func (m wizardModel) updateFocusedField(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 || m.focusIdx >= len(m.fields) {
		return m, nil
	}

	var cmd tea.Cmd
	fi := m.fields[m.focusIdx]
	switch fi.kind() {
	case flowdef.KindSelect:
		fi.sel, cmd = fi.sel.Update(msg)
	case flowdef.KindConfirm:
		fi.conf, cmd = fi.conf.Update(msg)
	default:
		fi.text, cmd = fi.text.Update(msg)
	}
	m.fields[m.focusIdx] = fi
	return m, cmd
}

func (m wizardModel) View() string {
	if m.done {
		return m.styles.App.Render(
			m.styles.Title.Render(m.def.Name) + "\n" +
				m.styles.Success.Render("✓ Flow completed"),
		)
	}

	title := m.styles.Title.Render(m.def.Name)
	rail := m.indicator().View()

	step := m.seq.CurrentStep()
	header := m.styles.Subtitle.Render(step.Title)
	body := header
	if step.Description != "" {
		body += "\n" + m.styles.Paragraph.Render(step.Description)
	}
	for _, fi := range m.fields {
		body += "\n\n" + m.fieldView(fi)
	}

	if m.busy {
		body += "\n\n" + m.styles.Spinner.Render("validating…")
	} else if m.errMsg != "" {
		body += "\n\n" + m.styles.Error.Render("✗ "+m.errMsg)
	}

	helpText := "enter next · esc back · ctrl+c quit"
	if m.allowJump {
		helpText += " · 1-9 jump"
	}
	help := m.styles.Help.Render(helpText)

	return m.styles.App.Render(title + "\n" + rail + "\n\n" + body + "\n\n" + help)
}

func (m wizardModel) fieldView(fi fieldInput) string {
	switch fi.kind() {
	case flowdef.KindSelect:
		label := fi.def.Label
		if label == "" {
			label = fi.def.Key
		}
		return m.styles.FieldLabel.Render(label) + "\n" + fi.sel.View()
	case flowdef.KindConfirm:
		return fi.conf.View()
	default:
		return fi.text.View()
	}
}

func (m wizardModel) indicator() components.StepIndicator {
	steps := m.seq.Steps()
	infos := make([]components.StepInfo, len(steps))
	for i, s := range steps {
		infos[i] = components.StepInfo{
			Title:    s.Title,
			Optional: s.Optional,
			State:    m.seq.StepState(i),
		}
	}
	return components.NewStepIndicator(infos).WithStyles(m.styles)
}

// stepErrorMessage strips the step prefix for inline display.
func stepErrorMessage(err error) string {
	var invalid *wizard.StepInvalidError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	var completion *wizard.CompletionError
	if errors.As(err, &completion) {
		return fmt.Sprintf("completion failed: %v", completion.Err)
	}
	return err.Error()
}
