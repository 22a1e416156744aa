package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Field struct {
	Label       string
	Placeholder string
	Default     string
	Secret      bool
}

// Form is one wizard step: a titled stack of text inputs with Tab/Enter
// navigation.
type Form struct {
	Inputs   []textinput.Model
	FocusIdx int
}

func NewForm(fields []Field) Form {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = f.Label + ": "
		in.Placeholder = f.Placeholder
		if f.Default != "" {
			in.SetValue(f.Default)
		}
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
		}
		if i == 0 {
			in.Focus()
			in.PromptStyle = focusedStyle
		} else {
			in.PromptStyle = blurredStyle
		}
		inputs[i] = in
	}
	return Form{Inputs: inputs}
}

// Update advances focus and reports submission when Enter is pressed on the
// last input.
func (m Form) Update(msg tea.Msg) (Form, tea.Cmd, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 {
				return m, nil, true
			}
			m.nextInput()
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
		}
	}

	cmds := make([]tea.Cmd, len(m.Inputs))
	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...), false
}

func (m *Form) nextInput() {
	m.blur()
	m.FocusIdx++
	if m.FocusIdx >= len(m.Inputs) {
		m.FocusIdx = 0
	}
	m.focus()
}

func (m *Form) prevInput() {
	m.blur()
	m.FocusIdx--
	if m.FocusIdx < 0 {
		m.FocusIdx = len(m.Inputs) - 1
	}
	m.focus()
}

func (m *Form) blur() {
	m.Inputs[m.FocusIdx].Blur()
	m.Inputs[m.FocusIdx].PromptStyle = blurredStyle
}

func (m *Form) focus() {
	m.Inputs[m.FocusIdx].Focus()
	m.Inputs[m.FocusIdx].PromptStyle = focusedStyle
}

func (m Form) Values() []string {
	vals := make([]string, len(m.Inputs))
	for i := range m.Inputs {
		vals[i] = strings.TrimSpace(m.Inputs[i].Value())
	}
	return vals
}

func (m Form) View() string {
	var b strings.Builder
	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
