package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/contactterm/internal/views"
)

func runInterface(ctx context.Context, c *client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := views.NewAppModel(views.AppConfig{
		Context:    ctx,
		Controller: c.controller,
		Contacts:   c.contacts,
		Gate:       c.gate,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	bridge := views.NewBridge(p.Send)
	defer bridge.Close()

	c.contacts.SetObserver(bridge)
	c.gate.OnChange(bridge.ConfirmationChanged)
	c.controller.OnStateChange(bridge.SessionChanged)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
