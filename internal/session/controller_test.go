package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/reconciler"
	"rhystmorgan/contactterm/internal/remote"
	"rhystmorgan/contactterm/internal/security"
	"rhystmorgan/contactterm/internal/storage"
	"rhystmorgan/contactterm/internal/validation"
)

type harness struct {
	controller *Controller
	tokens     *security.SessionStore
	contacts   *reconciler.Reconciler
	gate       *confirm.Gate
	states     []State
}

// newHarness wires the real components against a fake contacts service.
func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := security.NewSessionStore(storage.NewMemoryStore(), nil)
	gateway, err := remote.NewGateway(remote.GatewayConfig{BaseURL: server.URL, Tokens: tokens})
	require.NoError(t, err)
	api := remote.NewAPI(gateway)

	h := &harness{
		tokens:   tokens,
		contacts: reconciler.New(reconciler.Config{Service: api}),
		gate:     confirm.NewGate(),
	}
	h.controller = NewController(Config{
		Auth:          api,
		Tokens:        tokens,
		Contacts:      h.contacts,
		Confirmations: h.gate,
	})
	h.controller.OnStateChange(func(s State) { h.states = append(h.states, s) })
	return h
}

func serviceWithLogin(loginBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login", "/auth/register":
			w.Write([]byte(loginBody))
		case "/contacts":
			if r.Header.Get("Authorization") != "Bearer t1" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid token"}`))
				return
			}
			w.Write([]byte(`{"contacts":[{"_id":"1","name":"Ann"}]}`))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestLoginTokenShapes(t *testing.T) {
	for _, body := range []string{`{"token":"t1"}`, `{"data":{"token":"t1"}}`} {
		t.Run(body, func(t *testing.T) {
			h := newHarness(t, serviceWithLogin(body))

			require.NoError(t, h.controller.Login(context.Background(), " a@x.com ", "pw"))

			token, ok := h.tokens.Get()
			assert.True(t, ok)
			assert.Equal(t, "t1", token)
			assert.Equal(t, Authenticated, h.controller.State())
			assert.Equal(t, []models.Contact{{ID: "1", Name: "Ann"}}, h.contacts.Contacts())
		})
	}
}

func TestLoginSendsTrimmedCredentials(t *testing.T) {
	var got remote.Credentials
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"token":"t1"}`))
			return
		}
		w.Write([]byte(`[]`))
	})

	require.NoError(t, h.controller.Login(context.Background(), "  a@x.com\t", " pw "))
	assert.Equal(t, remote.Credentials{Email: "a@x.com", Password: " pw "}, got)
}

func TestLoginWithoutTokenFails(t *testing.T) {
	h := newHarness(t, serviceWithLogin(`{"message":"ok"}`))

	err := h.controller.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, ok := h.tokens.Get()
	assert.False(t, ok)
	assert.Equal(t, Unauthenticated, h.controller.State())
	assert.Empty(t, h.states)
}

func TestLoginRejectedByService(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	err := h.controller.Login(context.Background(), "a@x.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, Unauthenticated, h.controller.State())
}

func TestLoginValidatesLocally(t *testing.T) {
	calls := 0
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) { calls++ })

	err := h.controller.Login(context.Background(), "   ", "pw")
	assert.True(t, validation.IsValidationError(err, validation.ErrorEmailRequired))

	err = h.controller.Login(context.Background(), "a@x.com", "")
	assert.True(t, validation.IsValidationError(err, validation.ErrorPasswordRequired))

	assert.Zero(t, calls)
}

func TestRegisterWithoutTokenCreatesAccountOnly(t *testing.T) {
	h := newHarness(t, serviceWithLogin(`{"message":"Account created"}`))

	outcome, err := h.controller.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, RegisterOutcome{Created: true, LoggedIn: false}, outcome)

	_, ok := h.tokens.Get()
	assert.False(t, ok)
	assert.Equal(t, Unauthenticated, h.controller.State())
}

func TestRegisterWithTokenLogsIn(t *testing.T) {
	h := newHarness(t, serviceWithLogin(`{"data":{"token":"t1"}}`))

	outcome, err := h.controller.Register(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, RegisterOutcome{Created: true, LoggedIn: true}, outcome)
	assert.Equal(t, Authenticated, h.controller.State())
	assert.Len(t, h.contacts.Contacts(), 1)
}

func TestEnterKeepsSessionWhenLoadFails(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			w.Write([]byte(`{"token":"t1"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := h.controller.Login(context.Background(), "a@x.com", "pw")
	require.Error(t, err)
	assert.True(t, remote.IsRemoteStatus(err, http.StatusInternalServerError))
	assert.Equal(t, Authenticated, h.controller.State())

	token, _ := h.tokens.Get()
	assert.Equal(t, "t1", token)
}

func TestExitClearsEverything(t *testing.T) {
	h := newHarness(t, serviceWithLogin(`{"token":"t1"}`))
	ctx := context.Background()

	require.NoError(t, h.controller.Login(ctx, "a@x.com", "pw"))
	require.True(t, h.contacts.StartEdit(models.Contact{ID: "1", Name: "Ann"}))
	h.gate.Request(confirm.Confirmation{Title: "Delete Ann"})

	require.NoError(t, h.controller.Exit())

	_, ok := h.tokens.Get()
	assert.False(t, ok)
	assert.Empty(t, h.contacts.Contacts())
	_, editing := h.contacts.EditSlot()
	assert.False(t, editing)
	_, pending := h.gate.Pending()
	assert.False(t, pending)
	assert.Equal(t, []State{Authenticated, Unauthenticated}, h.states)
}

func TestResume(t *testing.T) {
	t.Run("with stored token", func(t *testing.T) {
		h := newHarness(t, serviceWithLogin(`{}`))
		require.NoError(t, h.tokens.Set("t1"))

		require.NoError(t, h.controller.Resume(context.Background()))
		assert.Equal(t, Authenticated, h.controller.State())
		assert.Len(t, h.contacts.Contacts(), 1)
	})

	t.Run("without token", func(t *testing.T) {
		h := newHarness(t, serviceWithLogin(`{}`))

		require.NoError(t, h.controller.Resume(context.Background()))
		assert.Equal(t, Unauthenticated, h.controller.State())
	})

	t.Run("expired token surfaces as a remote error", func(t *testing.T) {
		h := newHarness(t, serviceWithLogin(`{}`))
		require.NoError(t, h.tokens.Set("stale"))

		err := h.controller.Resume(context.Background())
		assert.True(t, remote.IsRemoteStatus(err, http.StatusUnauthorized))
		assert.Equal(t, Authenticated, h.controller.State())
	})
}

type failingTokens struct {
	setErr error
}

func (f failingTokens) Get() (string, bool) { return "", false }
func (f failingTokens) Set(string) error    { return f.setErr }
func (f failingTokens) Clear() error        { return nil }

func TestLoginTokenNotStored(t *testing.T) {
	server := httptest.NewServer(serviceWithLogin(`{"token":"t1"}`))
	t.Cleanup(server.Close)

	gateway, err := remote.NewGateway(remote.GatewayConfig{BaseURL: server.URL})
	require.NoError(t, err)
	api := remote.NewAPI(gateway)

	diskFull := errors.New("disk full")
	controller := NewController(Config{
		Auth:     api,
		Tokens:   failingTokens{setErr: diskFull},
		Contacts: reconciler.New(reconciler.Config{Service: api}),
	})

	err = controller.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, Unauthenticated, controller.State())
}
