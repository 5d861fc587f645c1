package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"rhystmorgan/contactterm/internal/remote"
	"rhystmorgan/contactterm/internal/validation"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ErrTokenMissing is returned by Login when the service accepted the
// credentials but sent no token.
var ErrTokenMissing = errors.New("token missing from response")

// Authenticator exchanges credentials for a session token. An empty token
// with a nil error means the service sent none.
type Authenticator interface {
	Login(ctx context.Context, creds remote.Credentials) (string, error)
	Register(ctx context.Context, creds remote.Credentials) (string, error)
}

// TokenStore is where the session token lives between runs.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// Contacts is the part of the reconciler the controller drives.
type Contacts interface {
	Reset()
	Clear()
	Load(ctx context.Context) error
}

// Confirmations is dismissed on logout.
type Confirmations interface {
	Dismiss()
}

// RegisterOutcome tells a registration that logged in apart from one that
// only created the account.
type RegisterOutcome struct {
	Created  bool
	LoggedIn bool
}

// Config holds configuration for creating a Controller.
type Config struct {
	Auth          Authenticator
	Tokens        TokenStore
	Contacts      Contacts
	Confirmations Confirmations
	Validator     *validation.ContactValidator
	Logger        *slog.Logger
}

// Controller moves the client between the unauthenticated and
// authenticated states.
type Controller struct {
	auth          Authenticator
	tokens        TokenStore
	contacts      Contacts
	confirmations Confirmations
	validator     *validation.ContactValidator
	logger        *slog.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
}

func NewController(config Config) *Controller {
	validator := config.Validator
	if validator == nil {
		validator = validation.NewContactValidator()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		auth:          config.Auth,
		tokens:        config.Tokens,
		contacts:      config.Contacts,
		confirmations: config.Confirmations,
		validator:     validator,
		logger:        logger,
	}
}

// OnStateChange registers the hook called after every transition.
func (c *Controller) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume enters the authenticated state when a token survived from an
// earlier run, and stays out otherwise.
func (c *Controller) Resume(ctx context.Context) error {
	if _, ok := c.tokens.Get(); ok {
		return c.Enter(ctx)
	}
	return c.Exit()
}

// Enter switches to the authenticated state and loads the contacts. A load
// failure is returned but the state stays authenticated.
func (c *Controller) Enter(ctx context.Context) error {
	c.setState(Authenticated)
	c.contacts.Reset()

	if err := c.contacts.Load(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}
	return nil
}

// Exit drops the token and every piece of per-session state.
func (c *Controller) Exit() error {
	err := c.tokens.Clear()
	if err != nil {
		c.logger.Warn("failed to clear session token", "error", err)
	}

	c.contacts.Reset()
	c.contacts.Clear()
	if c.confirmations != nil {
		c.confirmations.Dismiss()
	}
	c.setState(Unauthenticated)
	return err
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	creds, err := c.credentials(email, password)
	if err != nil {
		return err
	}

	token, err := c.auth.Login(ctx, creds)
	if err != nil {
		c.logger.Warn("login failed", "error", err)
		return err
	}
	if token == "" {
		return ErrTokenMissing
	}

	return c.establish(ctx, token)
}

// Register creates an account. When the service also returns a token the
// client logs in; otherwise the outcome reports the account as created only.
func (c *Controller) Register(ctx context.Context, email, password string) (RegisterOutcome, error) {
	creds, err := c.credentials(email, password)
	if err != nil {
		return RegisterOutcome{}, err
	}

	token, err := c.auth.Register(ctx, creds)
	if err != nil {
		c.logger.Warn("registration failed", "error", err)
		return RegisterOutcome{}, err
	}
	if token == "" {
		c.logger.Info("account created without session")
		return RegisterOutcome{Created: true}, nil
	}

	if err := c.establish(ctx, token); err != nil {
		return RegisterOutcome{Created: true, LoggedIn: c.State() == Authenticated}, err
	}
	return RegisterOutcome{Created: true, LoggedIn: true}, nil
}

func (c *Controller) credentials(email, password string) (remote.Credentials, error) {
	email = strings.TrimSpace(email)
	if err := c.validator.ValidateCredentials(email, password); err != nil {
		return remote.Credentials{}, err
	}
	return remote.Credentials{Email: email, Password: password}, nil
}

// establish stores the token and enters. A token that cannot be stored
// leaves the client logged out.
func (c *Controller) establish(ctx context.Context, token string) error {
	if err := c.tokens.Set(token); err != nil {
		return err
	}
	c.logger.Info("session established")
	return c.Enter(ctx)
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}
