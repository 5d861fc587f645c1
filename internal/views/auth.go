package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/contactterm/internal/session"
	"rhystmorgan/contactterm/internal/utils"
)

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

func (m authMode) String() string {
	if m == authRegister {
		return "Register"
	}
	return "Log in"
}

const (
	authFieldEmail = iota
	authFieldPassword
	authFieldCount
)

type authResultMsg struct {
	mode    authMode
	outcome session.RegisterOutcome
	err     error
}

// AuthModel is the login and registration form shown while logged out.
type AuthModel struct {
	controller *session.Controller
	ctx        context.Context
	styles     utils.Styles

	mode    authMode
	inputs  [authFieldCount]textinput.Model
	focus   int
	loading bool
	err     string
	notice  string

	width int
}

func NewAuthModel(ctx context.Context, controller *session.Controller, styles utils.Styles) *AuthModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = "Email    "
	email.PromptStyle = styles.Prompt
	email.TextStyle = styles.Text

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.PromptStyle = styles.Prompt
	password.TextStyle = styles.Text

	m := &AuthModel{
		controller: controller,
		ctx:        ctx,
		styles:     styles,
		inputs:     [authFieldCount]textinput.Model{email, password},
	}
	m.inputs[authFieldEmail].Focus()
	return m
}

func (m *AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the form for a fresh login, keeping the last email.
func (m *AuthModel) Reset() tea.Cmd {
	m.loading = false
	m.err = ""
	m.inputs[authFieldPassword].SetValue("")
	return m.setFocus(authFieldEmail)
}

func (m *AuthModel) SetWidth(width int) {
	m.width = width
}

func (m *AuthModel) Update(msg tea.Msg) (*AuthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = utils.UserMessage(msg.err)
			return m, nil
		}
		if msg.mode == authRegister && !msg.outcome.LoggedIn {
			m.mode = authLogin
			m.notice = "Account created. Log in to continue."
			m.inputs[authFieldPassword].SetValue("")
			return m, m.setFocus(authFieldPassword)
		}
		m.notice = ""
		m.inputs[authFieldPassword].SetValue("")
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+r":
			if m.mode == authLogin {
				m.mode = authRegister
			} else {
				m.mode = authLogin
			}
			m.err = ""
			m.notice = ""
			return m, nil

		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % authFieldCount)

		case "shift+tab", "up":
			return m, m.setFocus((m.focus + authFieldCount - 1) % authFieldCount)

		case "enter":
			if m.focus == authFieldEmail {
				return m, m.setFocus(authFieldPassword)
			}
			return m, m.submit()

		case "esc":
			m.err = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *AuthModel) submit() tea.Cmd {
	email := m.inputs[authFieldEmail].Value()
	password := m.inputs[authFieldPassword].Value()
	mode := m.mode

	m.loading = true
	m.err = ""
	m.notice = ""

	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		if mode == authRegister {
			outcome, err := controller.Register(ctx, email, password)
			return authResultMsg{mode: mode, outcome: outcome, err: err}
		}
		return authResultMsg{mode: mode, err: controller.Login(ctx, email, password)}
	}
}

func (m *AuthModel) setFocus(field int) tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = field
	return m.inputs[field].Focus()
}

func (m *AuthModel) View() string {
	var content strings.Builder

	content.WriteString(m.styles.Title.Render("contactterm · " + m.mode.String()))
	content.WriteString("\n\n")

	for i := range m.inputs {
		content.WriteString(m.inputs[i].View())
		content.WriteString("\n")
	}
	content.WriteString("\n")

	switch {
	case m.loading:
		content.WriteString(m.styles.Warning.Render("Contacting server..."))
	case m.err != "":
		content.WriteString(m.styles.Error.Render(m.err))
	case m.notice != "":
		content.WriteString(m.styles.Success.Render(m.notice))
	}
	content.WriteString("\n\n")

	other := authRegister
	if m.mode == authRegister {
		other = authLogin
	}
	content.WriteString(m.styles.Muted.Render("[Enter] " + m.mode.String() + "  [Tab] Next field  [Ctrl+R] " + other.String() + "  [Ctrl+C] Quit"))

	panel := m.styles.Panel.Width(60).Render(content.String())
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}
	return panel
}
