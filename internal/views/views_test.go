package views

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/reconciler"
	"rhystmorgan/contactterm/internal/session"
	"rhystmorgan/contactterm/internal/utils"
)

type stubService struct {
	mu      sync.Mutex
	deleted []string
	created []models.ContactFields
	// block, when set, holds updates until it is closed.
	block chan struct{}
}

func (s *stubService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return []models.Contact{{ID: "1", Name: "Ann"}}, nil
}

func (s *stubService) CreateContact(ctx context.Context, fields models.ContactFields) (models.ContactPatch, bool, error) {
	s.mu.Lock()
	s.created = append(s.created, fields)
	s.mu.Unlock()
	return models.ContactPatch{ID: "new"}, true, nil
}

func (s *stubService) UpdateContact(ctx context.Context, id string, changes models.ContactPatch) (models.ContactPatch, bool, error) {
	if s.block != nil {
		<-s.block
	}
	return models.ContactPatch{}, false, nil
}

func (s *stubService) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, id)
	s.mu.Unlock()
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newContactsModel(t *testing.T) (*ContactsModel, *reconciler.Reconciler, *confirm.Gate, *stubService) {
	t.Helper()
	service := &stubService{}
	contacts := reconciler.New(reconciler.Config{Service: service})
	gate := confirm.NewGate()
	controller := session.NewController(session.Config{Contacts: contacts, Confirmations: gate})
	m := NewContactsModel(context.Background(), contacts, gate, controller, utils.DefaultStyles)
	return m, contacts, gate, service
}

func TestBridgeDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []tea.Msg
	done := make(chan struct{})

	bridge := NewBridge(func(msg tea.Msg) {
		mu.Lock()
		got = append(got, msg)
		n := len(got)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
	})
	defer bridge.Close()

	bridge.SessionChanged(session.Authenticated)
	bridge.ContactsChanged([]models.Contact{{ID: "1"}})
	bridge.EditSlotChanged("1", true)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []tea.Msg{
		SessionStateMsg{State: session.Authenticated},
		ContactsChangedMsg{Contacts: []models.Contact{{ID: "1"}}},
		EditSlotChangedMsg{ID: "1", Editing: true},
	}, got)
}

func TestBridgeDropsAfterClose(t *testing.T) {
	sent := make(chan tea.Msg, 1)
	bridge := NewBridge(func(msg tea.Msg) { sent <- msg })
	bridge.Close()
	bridge.Close()

	bridge.SessionChanged(session.Unauthenticated)

	select {
	case msg := <-sent:
		t.Fatalf("unexpected message %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestContactsDeleteGoesThroughConfirmation(t *testing.T) {
	m, contacts, gate, service := newContactsModel(t)
	require.NoError(t, contacts.Load(context.Background()))
	m, _ = m.Update(ContactsChangedMsg{Contacts: contacts.Contacts()})

	m, _ = m.Update(key("d"))

	pending, ok := gate.Pending()
	require.True(t, ok)
	assert.Equal(t, "Delete contact", pending.Title)
	assert.Contains(t, pending.Description, "Ann")
	assert.Empty(t, service.deleted)

	m, _ = m.Update(ConfirmationChangedMsg{Pending: pending, OK: true})
	assert.True(t, m.confirm.Visible())

	m, cmd := m.Update(key("y"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, []string{"1"}, service.deleted)
	assert.Empty(t, contacts.Contacts())
	assert.Equal(t, "Deleted.", m.status)
}

func TestContactsDeclineKeepsContact(t *testing.T) {
	m, contacts, gate, service := newContactsModel(t)
	require.NoError(t, contacts.Load(context.Background()))
	m, _ = m.Update(ContactsChangedMsg{Contacts: contacts.Contacts()})

	m, _ = m.Update(key("d"))
	pending, _ := gate.Pending()
	m, _ = m.Update(ConfirmationChangedMsg{Pending: pending, OK: true})
	m.Update(key("n"))

	_, ok := gate.Pending()
	assert.False(t, ok)
	assert.Empty(t, service.deleted)
	assert.Len(t, contacts.Contacts(), 1)
}

func TestContactsEditFillsForm(t *testing.T) {
	m, contacts, _, _ := newContactsModel(t)
	require.NoError(t, contacts.Load(context.Background()))
	m, _ = m.Update(ContactsChangedMsg{Contacts: contacts.Contacts()})

	m, _ = m.Update(key("e"))

	assert.Equal(t, focusForm, m.focus)
	assert.Equal(t, "1", m.formFor)
	assert.Equal(t, "Ann", m.inputs[formFieldName].Value())
	id, editing := contacts.EditSlot()
	assert.True(t, editing)
	assert.Equal(t, "1", id)

	m, _ = m.Update(key("esc"))
	assert.Equal(t, focusList, m.focus)
	_, editing = contacts.EditSlot()
	assert.False(t, editing)
}

func TestContactsCreateFromForm(t *testing.T) {
	m, contacts, _, service := newContactsModel(t)

	m, _ = m.Update(key("n"))
	require.Equal(t, focusForm, m.focus)
	m.inputs[formFieldName].SetValue("Bob")
	m.inputs[formFieldEmail].SetValue("bob@x.com")

	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	msg := runUntil[opResultMsg](t, cmd)
	m, _ = m.Update(msg)

	require.Len(t, service.created, 1)
	assert.Equal(t, "Bob", service.created[0].Name)
	assert.Equal(t, "Contact created.", m.status)
	assert.Equal(t, focusList, m.focus)
	assert.Empty(t, m.inputs[formFieldName].Value())
	assert.Equal(t, []models.Contact{{ID: "new", Name: "Bob", Email: "bob@x.com"}}, contacts.Contacts())
}

func TestContactsCreateRejectsEmptyName(t *testing.T) {
	m, _, _, service := newContactsModel(t)

	m, _ = m.Update(key("n"))
	m.inputs[formFieldName].SetValue("   ")

	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(runUntil[opResultMsg](t, cmd))

	assert.Empty(t, service.created)
	assert.NotEmpty(t, m.err)
	assert.Equal(t, focusForm, m.focus)
}

func TestContactsRefuseSubmitAndDeleteWhileUpdating(t *testing.T) {
	m, contacts, gate, service := newContactsModel(t)
	service.block = make(chan struct{})
	require.NoError(t, contacts.Load(context.Background()))
	m, _ = m.Update(ContactsChangedMsg{Contacts: contacts.Contacts()})

	m, _ = m.Update(key("e"))
	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)

	results := make(chan opResultMsg, 1)
	go func() { results <- runUntil[opResultMsg](t, cmd) }()
	require.Eventually(t, func() bool { return contacts.InFlight("1") }, 2*time.Second, 5*time.Millisecond)

	m, cmd = m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.err)

	m, _ = m.Update(key("esc"))
	m.err = ""
	m, _ = m.Update(key("d"))
	_, pending := gate.Pending()
	assert.False(t, pending)
	assert.NotEmpty(t, m.err)

	close(service.block)
	m, _ = m.Update(<-results)
	assert.False(t, contacts.InFlight("1"))

	m, _ = m.Update(key("d"))
	_, pending = gate.Pending()
	assert.True(t, pending)
}

func TestAppRoutesOnSessionState(t *testing.T) {
	service := &stubService{}
	contacts := reconciler.New(reconciler.Config{Service: service})
	gate := confirm.NewGate()
	controller := session.NewController(session.Config{Contacts: contacts, Confirmations: gate})
	app := NewAppModel(AppConfig{Controller: controller, Contacts: contacts, Gate: gate})

	assert.Equal(t, ViewAuth, app.State())

	app.Update(SessionStateMsg{State: session.Authenticated})
	assert.Equal(t, ViewContacts, app.State())

	app.Update(SessionStateMsg{State: session.Unauthenticated})
	assert.Equal(t, ViewAuth, app.State())
}

// runUntil runs cmd, expanding batches, and returns the first T produced.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case T:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}
