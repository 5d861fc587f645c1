package security

import (
	"fmt"
	"log/slog"
	"sync"

	"rhystmorgan/contactterm/internal/storage"
)

const tokenKey = "token"

// SessionStore holds the bearer token for the current session. The token is
// read from the backing store once and served from memory afterwards; every
// Set and Clear is written through.
type SessionStore struct {
	store  storage.KeyValueStore
	logger *slog.Logger

	mu     sync.RWMutex
	loaded bool
	token  string
}

func NewSessionStore(store storage.KeyValueStore, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{store: store, logger: logger}
}

// Get returns the stored token. A token that cannot be read is treated as
// absent.
func (ss *SessionStore) Get() (string, bool) {
	ss.mu.RLock()
	if ss.loaded {
		token := ss.token
		ss.mu.RUnlock()
		return token, token != ""
	}
	ss.mu.RUnlock()

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.loaded {
		token, _, err := ss.store.Get(tokenKey)
		if err != nil {
			ss.logger.Warn("failed to read session token", "error", err)
			token = ""
		}
		ss.token = token
		ss.loaded = true
	}
	return ss.token, ss.token != ""
}

func (ss *SessionStore) Set(token string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ss.store.Set(tokenKey, token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	ss.token = token
	ss.loaded = true
	return nil
}

// Clear removes the token. The in-memory copy is dropped even when the
// backing store fails, so the session ends either way.
func (ss *SessionStore) Clear() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.token = ""
	ss.loaded = true

	if err := ss.store.Delete(tokenKey); err != nil {
		return fmt.Errorf("failed to remove session token: %w", err)
	}
	return nil
}
