package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
)

type registerDoneMsg struct {
	result services.RegisterResult
	err    error
}

type verifyDoneMsg struct {
	outcome session.VerifyOutcome
	err     error
}

type registerPhase int

const (
	phaseForm registerPhase = iota
	phaseVerify
)

// registerModel covers sign-up and the follow-on verification code entry.
// A verify response carrying a token logs the user in implicitly; the
// session change then routes away from this screen.
type registerModel struct {
	manager SessionPort

	phase   registerPhase
	inputs  []textinput.Model
	code    textinput.Model
	focus   int
	busy    bool
	notice  string
	errText string

	email string
}

func newRegisterModel(manager SessionPort) registerModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password (8+ characters)"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	nickname := textinput.New()
	nickname.Placeholder = "nickname"
	nickname.CharLimit = 40

	code := textinput.New()
	code.Placeholder = "verification code"
	code.CharLimit = 16

	return registerModel{
		manager: manager,
		inputs:  []textinput.Model{email, password, nickname},
		code:    code,
	}
}

func (m registerModel) init() tea.Cmd {
	return textinput.Blink
}

func (m registerModel) update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, switchRoute(routeLogin)
		case "tab", "down":
			if m.phase == phaseForm {
				m.setFocus((m.focus + 1) % len(m.inputs))
			}
			return m, nil
		case "shift+tab", "up":
			if m.phase == phaseForm {
				m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			}
			return m, nil
		case "enter":
			if m.phase == phaseVerify {
				return m.submitVerify()
			}
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m.submitRegister()
		}

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.phase = phaseVerify
		m.notice = msg.result.Message
		m.errText = ""
		m.code.Focus()
		return m, textinput.Blink

	case verifyDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		if msg.outcome.AutoLogin {
			// Session change routes us onward.
			m.notice = "verified, signing in..."
			return m, nil
		}
		return m, switchRoute(routeLogin)
	}

	if m.phase == phaseVerify {
		var cmd tea.Cmd
		m.code, cmd = m.code.Update(msg)
		return m, cmd
	}
	cmd := m.updateInputs(msg)
	return m, cmd
}

func (m *registerModel) setFocus(idx int) {
	m.focus = idx
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *registerModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (m registerModel) submitRegister() (registerModel, tea.Cmd) {
	reg := services.Registration{
		Email:    strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
		Nickname: strings.TrimSpace(m.inputs[2].Value()),
	}
	m.busy = true
	m.errText = ""
	m.email = reg.Email
	manager := m.manager
	return m, func() tea.Msg {
		result, err := manager.Register(context.Background(), reg)
		return registerDoneMsg{result: result, err: err}
	}
}

func (m registerModel) submitVerify() (registerModel, tea.Cmd) {
	v := services.Verification{
		Email: m.email,
		Code:  strings.TrimSpace(m.code.Value()),
	}
	m.busy = true
	m.errText = ""
	manager := m.manager
	return m, func() tea.Msg {
		outcome, err := manager.Verify(context.Background(), v)
		return verifyDoneMsg{outcome: outcome, err: err}
	}
}

func (m registerModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NextRead - create account"))
	b.WriteString("\n")

	if m.phase == phaseVerify {
		if m.notice != "" {
			b.WriteString(subtleStyle.Render(m.notice) + "\n\n")
		}
		b.WriteString(m.code.View())
		b.WriteString("\n")
	} else {
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteString("\n")
		}
	}

	if m.busy {
		b.WriteString(subtleStyle.Render("\nworking..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString(helpStyle.Render("\nenter submit | esc back to sign in"))
	return b.String()
}
