package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"rhystmorgan/contactterm/internal/audit"
	"rhystmorgan/contactterm/internal/config"
	"rhystmorgan/contactterm/internal/confirm"
	"rhystmorgan/contactterm/internal/reconciler"
	"rhystmorgan/contactterm/internal/remote"
	"rhystmorgan/contactterm/internal/security"
	"rhystmorgan/contactterm/internal/session"
	"rhystmorgan/contactterm/internal/storage"
)

// client is the wired set of components behind every command.
type client struct {
	config     *config.ClientConfig
	storage    *storage.Storage
	logger     *slog.Logger
	logFile    *os.File
	tokens     *security.SessionStore
	api        *remote.API
	contacts   *reconciler.Reconciler
	gate       *confirm.Gate
	controller *session.Controller
	// trail is nil when auditing is disabled.
	trail *audit.Trail
}

func newClient(cfg *config.ClientConfig) (*client, error) {
	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logFile, err := os.OpenFile(store.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.ConfigFile == "" {
		if path, err := config.EnsureDefaultFile(store.DataDir()); err != nil {
			logger.Warn("failed to write default config", "error", err)
		} else {
			logger.Info("wrote default config", "path", path)
		}
	}

	c := &client{
		config:  cfg,
		storage: store,
		logger:  logger,
		logFile: logFile,
		gate:    confirm.NewGate(),
	}

	var kv storage.KeyValueStore
	if cfg.Ephemeral {
		kv = storage.NewMemoryStore()
	} else {
		file, err := store.OpenSessionFile(cfg.Passphrase)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open session file: %w", err)
		}
		kv = file
	}
	c.tokens = security.NewSessionStore(kv, logger)

	gateway, err := remote.NewGateway(remote.GatewayConfig{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Tokens:     c.tokens,
		Logger:     logger,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.api = remote.NewAPI(gateway)

	var recorder reconciler.Recorder
	if cfg.AuditEnabled {
		trail, err := audit.NewTrail(store.AuditPath())
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open audit trail: %w", err)
		}
		c.trail = trail
		recorder = trail
	}

	c.contacts = reconciler.New(reconciler.Config{
		Service:  c.api,
		Recorder: recorder,
		Logger:   logger,
	})
	c.controller = session.NewController(session.Config{
		Auth:          c.api,
		Tokens:        c.tokens,
		Contacts:      c.contacts,
		Confirmations: c.gate,
		Logger:        logger,
	})

	logger.Debug("client ready", "api", cfg.APIBaseURL, "data_dir", cfg.DataDir, "audit", cfg.AuditEnabled, "ephemeral", cfg.Ephemeral)
	return c, nil
}

func (c *client) Close() error {
	var errs []error
	if c.trail != nil {
		errs = append(errs, c.trail.Close())
		c.trail = nil
	}
	if c.logFile != nil {
		errs = append(errs, c.logFile.Close())
		c.logFile = nil
	}
	return errors.Join(errs...)
}
