package views

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/session"
)

// ContactsChangedMsg carries the full contact collection after a change.
type ContactsChangedMsg struct {
	Contacts []models.Contact
}

// EditSlotChangedMsg carries the edit slot after a change.
type EditSlotChangedMsg struct {
	ID      string
	Editing bool
}

// ConfirmationChangedMsg carries the pending confirmation after a change.
type ConfirmationChangedMsg struct {
	Pending confirm.Confirmation
	OK      bool
}

// SessionStateMsg carries the session state after a transition.
type SessionStateMsg struct {
	State session.State
}

// Bridge turns component change hooks into bubbletea messages. Hooks may
// fire from inside Update, so messages are queued and delivered in order by
// a separate goroutine instead of being sent inline.
type Bridge struct {
	send func(tea.Msg)

	mu     sync.Mutex
	queue  []tea.Msg
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func NewBridge(send func(tea.Msg)) *Bridge {
	b := &Bridge{
		send: send,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *Bridge) ContactsChanged(contacts []models.Contact) {
	b.enqueue(ContactsChangedMsg{Contacts: contacts})
}

func (b *Bridge) EditSlotChanged(id string, editing bool) {
	b.enqueue(EditSlotChangedMsg{ID: id, Editing: editing})
}

func (b *Bridge) ConfirmationChanged(pending confirm.Confirmation, ok bool) {
	b.enqueue(ConfirmationChangedMsg{Pending: pending, OK: ok})
}

func (b *Bridge) SessionChanged(state session.State) {
	b.enqueue(SessionStateMsg{State: state})
}

// Close stops delivery. Queued messages that were not sent are dropped.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	close(b.done)
}

func (b *Bridge) enqueue(msg tea.Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) pump() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		for {
			b.mu.Lock()
			if b.closed || len(b.queue) == 0 {
				b.mu.Unlock()
				break
			}
			msg := b.queue[0]
			b.queue = b.queue[1:]
			b.mu.Unlock()

			b.send(msg)
		}
	}
}
