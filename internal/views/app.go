package views

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/reconciler"
	"rhystmorgan/contactterm/internal/session"
	"rhystmorgan/contactterm/internal/utils"
)

type ViewState int

const (
	ViewAuth ViewState = iota
	ViewContacts
)

func (v ViewState) String() string {
	switch v {
	case ViewAuth:
		return "auth"
	case ViewContacts:
		return "contacts"
	default:
		return "unknown"
	}
}

// ErrorMsg reports a failure from work started outside a view.
type ErrorMsg struct {
	Err error
}

type resumeResultMsg struct {
	err error
}

// AppConfig holds the components the interface drives.
type AppConfig struct {
	Context    context.Context
	Controller *session.Controller
	Contacts   *reconciler.Reconciler
	Gate       *confirm.Gate
	Styles     *utils.Styles
}

// AppModel routes between the login screen and the contact list according
// to the session state.
type AppModel struct {
	state      ViewState
	width      int
	height     int
	controller *session.Controller

	auth         *AuthModel
	contactsView *ContactsModel
}

func NewAppModel(config AppConfig) *AppModel {
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	styles := utils.DefaultStyles
	if config.Styles != nil {
		styles = *config.Styles
	}

	return &AppModel{
		state:        ViewAuth,
		controller:   config.Controller,
		auth:         NewAuthModel(ctx, config.Controller, styles),
		contactsView: NewContactsModel(ctx, config.Contacts, config.Gate, config.Controller, styles),
	}
}

func (m *AppModel) State() ViewState {
	return m.state
}

func (m *AppModel) Init() tea.Cmd {
	controller := m.controller
	ctx := m.auth.ctx
	resume := func() tea.Msg {
		return resumeResultMsg{err: controller.Resume(ctx)}
	}
	return tea.Batch(m.auth.Init(), resume)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.auth.SetWidth(msg.Width)
		m.contactsView.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case SessionStateMsg:
		return m.navigate(msg.State)

	case resumeResultMsg:
		if msg.err != nil {
			m.showError(msg.err)
		}
		return m, nil

	case ErrorMsg:
		m.showError(msg.Err)
		return m, nil

	case authResultMsg:
		// A login whose contact load failed still lands on the list.
		if msg.err != nil && m.controller.State() == session.Authenticated {
			m.auth, _ = m.auth.Update(authResultMsg{mode: msg.mode, outcome: msg.outcome})
			m.contactsView.ShowError(msg.err)
			return m, nil
		}
		m.auth, cmd = m.auth.Update(msg)
		return m, cmd

	case ContactsChangedMsg, EditSlotChangedMsg, ConfirmationChangedMsg, confirmResultMsg, opResultMsg, spinner.TickMsg:
		m.contactsView, cmd = m.contactsView.Update(msg)
		return m, cmd
	}

	switch m.state {
	case ViewAuth:
		m.auth, cmd = m.auth.Update(msg)
	case ViewContacts:
		m.contactsView, cmd = m.contactsView.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) View() string {
	switch m.state {
	case ViewContacts:
		return m.contactsView.View()
	default:
		return m.auth.View()
	}
}

func (m *AppModel) navigate(state session.State) (tea.Model, tea.Cmd) {
	if state == session.Authenticated {
		m.state = ViewContacts
		return m, nil
	}

	m.state = ViewAuth
	m.contactsView.Reset()
	return m, m.auth.Reset()
}

func (m *AppModel) showError(err error) {
	if m.controller.State() == session.Authenticated {
		m.contactsView.ShowError(err)
		return
	}
	m.auth.err = utils.UserMessage(err)
}
