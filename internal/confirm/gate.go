package confirm

import (
	"context"
	"sync"
)

// Action is the work a confirmation guards.
type Action func(ctx context.Context) error

// Confirmation describes a yes/no decision in front of a destructive action.
type Confirmation struct {
	Title        string
	Description  string
	ConfirmLabel string
	Action       Action
}

// ChangeFunc receives the pending confirmation after every transition.
// ok is false when nothing is pending.
type ChangeFunc func(pending Confirmation, ok bool)

// Gate holds at most one pending confirmation. A new Request replaces an
// outstanding one.
type Gate struct {
	mu       sync.Mutex
	pending  *Confirmation
	seq      uint64
	running  bool
	onChange ChangeFunc
}

func NewGate() *Gate {
	return &Gate{}
}

// OnChange registers the hook called after every transition.
func (g *Gate) OnChange(fn ChangeFunc) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

func (g *Gate) Request(c Confirmation) {
	g.mu.Lock()
	g.pending = &c
	g.seq++
	g.running = false
	g.mu.Unlock()

	g.notify()
}

// Accept runs the pending action and then clears it, whether or not the
// action failed. The action's error is returned. With nothing pending, or
// while the pending action is already running, Accept does nothing.
func (g *Gate) Accept(ctx context.Context) error {
	g.mu.Lock()
	if g.pending == nil || g.running {
		g.mu.Unlock()
		return nil
	}
	action := g.pending.Action
	seq := g.seq
	g.running = true
	g.mu.Unlock()

	var err error
	if action != nil {
		err = action(ctx)
	}

	g.mu.Lock()
	cleared := g.seq == seq
	if cleared {
		g.pending = nil
		g.running = false
	}
	g.mu.Unlock()

	if cleared {
		g.notify()
	}
	return err
}

// Dismiss clears the pending confirmation without running it.
func (g *Gate) Dismiss() {
	g.mu.Lock()
	if g.pending == nil {
		g.mu.Unlock()
		return
	}
	g.pending = nil
	g.seq++
	g.running = false
	g.mu.Unlock()

	g.notify()
}

func (g *Gate) Pending() (Confirmation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return Confirmation{}, false
	}
	return *g.pending, true
}

// Running reports whether the pending action is being executed.
func (g *Gate) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *Gate) notify() {
	g.mu.Lock()
	fn := g.onChange
	var current Confirmation
	ok := g.pending != nil
	if ok {
		current = *g.pending
	}
	g.mu.Unlock()

	if fn != nil {
		fn(current, ok)
	}
}
