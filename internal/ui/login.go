package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextreadapp/nextread-client/internal/services"
)

type loginDoneMsg struct {
	err error
}

type loginModel struct {
	manager SessionPort

	inputs  []textinput.Model
	focus   int
	busy    bool
	errText string
}

func newLoginModel(manager SessionPort) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginModel{
		manager: manager,
		inputs:  []textinput.Model{email, password},
	}
}

func (m loginModel) init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "ctrl+r":
			return m, switchRoute(routeRegister)
		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submit()
		}

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		// The session change lands separately and routes us onward.
		return m, nil
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *loginModel) setFocus(idx int) {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *loginModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	creds := services.Credentials{
		Email:    strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
	}
	m.busy = true
	m.errText = ""
	manager := m.manager
	return m, func() tea.Msg {
		_, err := manager.Login(context.Background(), creds)
		return loginDoneMsg{err: err}
	}
}

func (m loginModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NextRead - sign in"))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(subtleStyle.Render("\nsigning in..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString(helpStyle.Render("\nenter submit | ctrl+r register | ctrl+c quit"))
	return b.String()
}
