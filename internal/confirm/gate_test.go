package confirm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastRequestWins(t *testing.T) {
	gate := NewGate()
	var ran []string

	gate.Request(Confirmation{Title: "A", Action: func(context.Context) error {
		ran = append(ran, "A")
		return nil
	}})
	gate.Request(Confirmation{Title: "B", Action: func(context.Context) error {
		ran = append(ran, "B")
		return nil
	}})

	pending, ok := gate.Pending()
	require.True(t, ok)
	assert.Equal(t, "B", pending.Title)

	require.NoError(t, gate.Accept(context.Background()))
	assert.Equal(t, []string{"B"}, ran)

	_, ok = gate.Pending()
	assert.False(t, ok)
}

func TestAcceptClearsOnFailure(t *testing.T) {
	gate := NewGate()
	boom := errors.New("boom")

	gate.Request(Confirmation{Title: "Delete", Action: func(context.Context) error { return boom }})

	err := gate.Accept(context.Background())
	assert.ErrorIs(t, err, boom)

	_, ok := gate.Pending()
	assert.False(t, ok)
}

func TestDismissDoesNotRunAction(t *testing.T) {
	gate := NewGate()
	called := false

	gate.Request(Confirmation{Action: func(context.Context) error {
		called = true
		return nil
	}})
	gate.Dismiss()

	assert.False(t, called)
	_, ok := gate.Pending()
	assert.False(t, ok)

	require.NoError(t, gate.Accept(context.Background()))
	assert.False(t, called)
}

func TestChangeHookSeesEveryTransition(t *testing.T) {
	gate := NewGate()

	type event struct {
		title string
		ok    bool
	}
	var events []event
	gate.OnChange(func(c Confirmation, ok bool) {
		events = append(events, event{title: c.Title, ok: ok})
	})

	gate.Request(Confirmation{Title: "A"})
	gate.Dismiss()
	gate.Dismiss()
	gate.Request(Confirmation{Title: "B"})
	require.NoError(t, gate.Accept(context.Background()))

	assert.Equal(t, []event{
		{title: "A", ok: true},
		{title: "", ok: false},
		{title: "B", ok: true},
		{title: "", ok: false},
	}, events)
}

func TestAcceptIsNotReentrant(t *testing.T) {
	gate := NewGate()
	calls := 0

	gate.Request(Confirmation{Action: func(ctx context.Context) error {
		calls++
		assert.True(t, gate.Running())
		return gate.Accept(ctx)
	}})

	require.NoError(t, gate.Accept(context.Background()))
	assert.Equal(t, 1, calls)
	assert.False(t, gate.Running())
}

func TestRequestDuringActionSurvives(t *testing.T) {
	gate := NewGate()

	gate.Request(Confirmation{Title: "A", Action: func(context.Context) error {
		gate.Request(Confirmation{Title: "B"})
		return nil
	}})

	require.NoError(t, gate.Accept(context.Background()))

	pending, ok := gate.Pending()
	require.True(t, ok)
	assert.Equal(t, "B", pending.Title)
}
