package views

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/utils"
)

type confirmResultMsg struct {
	label string
	err   error
}

// ConfirmModel draws the pending confirmation as a modal and resolves it.
type ConfirmModel struct {
	gate    *confirm.Gate
	ctx     context.Context
	styles  utils.Styles
	pending confirm.Confirmation
	visible bool
	running bool
}

func NewConfirmModel(ctx context.Context, gate *confirm.Gate, styles utils.Styles) *ConfirmModel {
	return &ConfirmModel{gate: gate, ctx: ctx, styles: styles}
}

func (m *ConfirmModel) Visible() bool {
	return m.visible
}

func (m *ConfirmModel) Update(msg tea.Msg) (*ConfirmModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ConfirmationChangedMsg:
		m.pending = msg.Pending
		m.visible = msg.OK
		if !msg.OK {
			m.running = false
		}

	case confirmResultMsg:
		m.running = false

	case tea.KeyMsg:
		if !m.visible || m.running {
			return m, nil
		}
		switch msg.String() {
		case "y", "Y", "enter":
			m.running = true
			return m, m.accept()
		case "n", "N", "esc":
			m.gate.Dismiss()
		}
	}

	return m, nil
}

func (m *ConfirmModel) accept() tea.Cmd {
	gate, ctx, label := m.gate, m.ctx, m.pending.ConfirmLabel
	return func() tea.Msg {
		return confirmResultMsg{label: label, err: gate.Accept(ctx)}
	}
}

func (m *ConfirmModel) View() string {
	if !m.visible {
		return ""
	}

	var content strings.Builder
	content.WriteString(m.styles.Error.Render(m.pending.Title))
	content.WriteString("\n\n")
	if m.pending.Description != "" {
		content.WriteString(m.styles.Text.Render(m.pending.Description))
		content.WriteString("\n\n")
	}

	label := m.pending.ConfirmLabel
	if label == "" {
		label = "Confirm"
	}
	if m.running {
		content.WriteString(m.styles.Warning.Render("Working..."))
	} else {
		content.WriteString(m.styles.Muted.Render("[Y] " + label + "  [N] Cancel"))
	}

	return m.styles.Modal.Render(content.String())
}

// Overlay centres the modal over a background of the given size.
func (m *ConfirmModel) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}
