package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/reconciler"
	"rhystmorgan/contactterm/internal/session"
	"rhystmorgan/contactterm/internal/utils"
)

type contactsFocus int

const (
	focusList contactsFocus = iota
	focusForm
)

const (
	formFieldName = iota
	formFieldPhone
	formFieldEmail
	formFieldCount
)

const nameColumnWidth = 24

type opKind int

const (
	opLoad opKind = iota
	opSave
)

type opResultMsg struct {
	kind opKind
	// formFor is the edit target the form was bound to when submitted.
	formFor string
	err     error
}

// ContactsModel is the authenticated screen: the contact list, the
// create/edit form and the delete confirmation.
type ContactsModel struct {
	contacts   *reconciler.Reconciler
	gate       *confirm.Gate
	controller *session.Controller
	ctx        context.Context
	styles     utils.Styles

	items    []models.Contact
	selected int
	editID   string
	editing  bool

	focus     contactsFocus
	inputs    [formFieldCount]textinput.Model
	formField int
	// formFor is the contact ID the form is editing, or "" for a new contact.
	formFor string

	confirm *ConfirmModel
	spinner spinner.Model
	pending int

	status string
	err    string

	width  int
	height int
}

func NewContactsModel(ctx context.Context, contacts *reconciler.Reconciler, gate *confirm.Gate, controller *session.Controller, styles utils.Styles) *ContactsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Warning

	m := &ContactsModel{
		contacts:   contacts,
		gate:       gate,
		controller: controller,
		ctx:        ctx,
		styles:     styles,
		confirm:    NewConfirmModel(ctx, gate, styles),
		spinner:    s,
	}

	placeholders := [formFieldCount]string{"Full name", "Phone (optional)", "Email (optional)"}
	prompts := [formFieldCount]string{"Name  ", "Phone ", "Email "}
	limits := [formFieldCount]int{80, 32, 254}
	for i := range m.inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.Prompt = prompts[i]
		input.CharLimit = limits[i]
		input.PromptStyle = styles.Prompt
		input.TextStyle = styles.Text
		m.inputs[i] = input
	}

	return m
}

func (m *ContactsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset drops every piece of per-session view state.
func (m *ContactsModel) Reset() {
	m.items = nil
	m.selected = 0
	m.editID = ""
	m.editing = false
	m.focus = focusList
	m.formFor = ""
	m.clearForm()
	m.status = ""
	m.err = ""
}

// ShowError puts err on the status line.
func (m *ContactsModel) ShowError(err error) {
	m.err = utils.UserMessage(err)
	m.status = ""
}

// Reload fetches the collection again.
func (m *ContactsModel) Reload() tea.Cmd {
	contacts := m.contacts
	return m.run(opResultMsg{kind: opLoad}, func(ctx context.Context) error {
		return contacts.Load(ctx)
	})
}

func (m *ContactsModel) Update(msg tea.Msg) (*ContactsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ContactsChangedMsg:
		m.items = msg.Contacts
		m.clampSelection()
		return m, nil

	case EditSlotChangedMsg:
		wasFor := m.formFor
		m.editID, m.editing = msg.ID, msg.Editing
		// Messages trail the reconciler, so check its current slot before
		// dropping a form that may belong to a newer edit.
		if id, editing := m.contacts.EditSlot(); wasFor != "" && (!editing || id != wasFor) {
			m.formFor = ""
			m.clearForm()
			if m.focus == focusForm {
				m.focus = focusList
				m.blurForm()
			}
		}
		return m, nil

	case ConfirmationChangedMsg:
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd

	case confirmResultMsg:
		m.confirm, _ = m.confirm.Update(msg)
		if msg.err != nil {
			m.ShowError(msg.err)
		} else {
			m.err = ""
			m.status = "Deleted."
		}
		return m, nil

	case opResultMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err != nil {
			m.ShowError(msg.err)
			return m, nil
		}
		m.err = ""
		if msg.kind == opSave {
			if msg.formFor == "" {
				m.status = "Contact created."
			} else {
				m.status = "Contact updated."
			}
			if m.formFor == msg.formFor {
				m.formFor = ""
				m.clearForm()
				m.focus = focusList
				m.blurForm()
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirm.Visible() {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.focus == focusForm {
		var cmd tea.Cmd
		m.inputs[m.formField], cmd = m.inputs[m.formField].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ContactsModel) updateList(msg tea.KeyMsg) (*ContactsModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}

	case "n", "a":
		m.contacts.CancelEdit()
		m.formFor = ""
		m.clearForm()
		return m, m.focusForm(formFieldName)

	case "e", "enter":
		contact, ok := m.current()
		if !ok {
			return m, nil
		}
		if !m.contacts.StartEdit(contact) {
			return m, nil
		}
		draft, _ := m.contacts.Draft()
		m.formFor = contact.ID
		m.fillForm(draft)
		return m, m.focusForm(formFieldName)

	case "d", "delete":
		contact, ok := m.current()
		if !ok {
			return m, nil
		}
		m.requestDelete(contact)

	case "r":
		return m, m.Reload()

	case "L", "ctrl+l":
		if err := m.controller.Exit(); err != nil {
			m.ShowError(err)
		}

	case "esc":
		m.err = ""
		m.status = ""

	case "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m *ContactsModel) updateForm(msg tea.KeyMsg) (*ContactsModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, m.focusForm((m.formField + 1) % formFieldCount)

	case "shift+tab", "up":
		return m, m.focusForm((m.formField + formFieldCount - 1) % formFieldCount)

	case "enter":
		return m, m.submit()

	case "esc":
		if m.formFor != "" {
			m.contacts.CancelEdit()
		}
		m.formFor = ""
		m.clearForm()
		m.focus = focusList
		m.blurForm()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.formField], cmd = m.inputs[m.formField].Update(msg)
	return m, cmd
}

func (m *ContactsModel) submit() tea.Cmd {
	fields := models.NewContactFields(
		m.inputs[formFieldName].Value(),
		m.inputs[formFieldPhone].Value(),
		m.inputs[formFieldEmail].Value(),
	)
	formFor := m.formFor
	contacts := m.contacts
	if contacts.InFlight(formFor) {
		m.ShowError(reconciler.ErrBusy)
		return nil
	}

	return m.run(opResultMsg{kind: opSave, formFor: formFor}, func(ctx context.Context) error {
		if formFor != "" {
			return contacts.Update(ctx, formFor, fields.Patch())
		}
		return contacts.Create(ctx, fields)
	})
}

func (m *ContactsModel) requestDelete(contact models.Contact) {
	if m.contacts.InFlight(contact.ID) {
		m.ShowError(reconciler.ErrBusy)
		return
	}
	contacts := m.contacts
	id := contact.ID
	m.gate.Request(confirm.Confirmation{
		Title:        "Delete contact",
		Description:  fmt.Sprintf("Delete %s? This cannot be undone.", contact.DisplayName()),
		ConfirmLabel: "Delete",
		Action: func(ctx context.Context) error {
			return contacts.Delete(ctx, id)
		},
	})
}

// run starts fn in the background and reports its error on result.
func (m *ContactsModel) run(result opResultMsg, fn func(ctx context.Context) error) tea.Cmd {
	m.pending++
	m.status = ""
	ctx := m.ctx
	op := func() tea.Msg {
		result.err = fn(ctx)
		return result
	}
	if m.pending == 1 {
		return tea.Batch(op, m.spinner.Tick)
	}
	return op
}

func (m *ContactsModel) current() (models.Contact, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return models.Contact{}, false
	}
	return m.items[m.selected], true
}

func (m *ContactsModel) clampSelection() {
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *ContactsModel) fillForm(fields models.ContactFields) {
	m.inputs[formFieldName].SetValue(fields.Name)
	m.inputs[formFieldPhone].SetValue(fields.Phone)
	m.inputs[formFieldEmail].SetValue(fields.Email)
}

func (m *ContactsModel) clearForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
}

func (m *ContactsModel) focusForm(field int) tea.Cmd {
	m.focus = focusForm
	m.blurForm()
	m.formField = field
	return m.inputs[field].Focus()
}

func (m *ContactsModel) blurForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *ContactsModel) View() string {
	var content strings.Builder

	title := fmt.Sprintf("Contacts (%d)", len(m.items))
	if m.pending > 0 {
		title += " " + m.spinner.View()
	}
	header := m.styles.Header
	if m.width > 0 {
		header = header.Width(m.width)
	}
	content.WriteString(header.Render(title))
	content.WriteString("\n\n")

	content.WriteString(m.renderList())
	content.WriteString("\n\n")
	content.WriteString(m.renderForm())
	content.WriteString("\n")

	switch {
	case m.err != "":
		content.WriteString(m.styles.Error.Render(m.err))
	case m.status != "":
		content.WriteString(m.styles.Success.Render(m.status))
	}
	content.WriteString("\n")
	content.WriteString(m.renderHelp())

	view := content.String()
	if m.confirm.Visible() && m.width > 0 && m.height > 0 {
		return m.confirm.Overlay(m.width, m.height)
	}
	if m.confirm.Visible() {
		return view + "\n\n" + m.confirm.View()
	}
	return view
}

func (m *ContactsModel) renderList() string {
	if len(m.items) == 0 {
		if m.pending > 0 {
			return m.styles.Muted.Render("  Loading contacts...")
		}
		return m.styles.Muted.Render("  No contacts yet. Press [N] to add one.")
	}

	rows := make([]string, 0, len(m.items))
	for i, contact := range m.items {
		marker := "  "
		if m.editing && contact.ID == m.editID {
			marker = m.styles.Editing.Render("✎ ")
		}

		line := utils.FormatContactLine(contact, nameColumnWidth)
		if i == m.selected && m.focus == focusList {
			line = m.styles.Selected.Render(line)
		} else {
			line = m.styles.Text.Render(line)
		}
		rows = append(rows, marker+line)
	}

	return strings.Join(rows, "\n")
}

func (m *ContactsModel) renderForm() string {
	title := "New contact"
	if m.formFor != "" {
		title = "Edit contact"
	}

	lines := []string{m.styles.Title.Render(title)}
	for i := range m.inputs {
		lines = append(lines, m.inputs[i].View())
	}

	panel := m.styles.Panel
	if m.focus == focusForm {
		panel = panel.BorderForeground(lipgloss.Color(utils.Colours.Blue))
	}
	return panel.Render(strings.Join(lines, "\n"))
}

func (m *ContactsModel) renderHelp() string {
	if m.focus == focusForm {
		return m.styles.Help.Render("[Enter] Save  [Tab] Next field  [Esc] Cancel")
	}
	return m.styles.Help.Render("[↑/↓] Move  [N] New  [E] Edit  [D] Delete  [R] Reload  [L] Log out  [Q] Quit")
}
