package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir      = ".contactterm"
	sessionFile = "session.json"
	keyFile     = "local.key"
	logFile     = "contactterm.log"
	auditFile   = "audit.jsonl"
)

// Storage owns the client's data directory.
type Storage struct {
	dataDir string
}

// DefaultDataDir returns ~/.contactterm.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

func NewStorage(dataDir string) (*Storage, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDataDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) SessionPath() string {
	return filepath.Join(s.dataDir, sessionFile)
}

func (s *Storage) LogPath() string {
	return filepath.Join(s.dataDir, logFile)
}

func (s *Storage) AuditPath() string {
	return filepath.Join(s.dataDir, auditFile)
}

// OpenSessionFile opens the encrypted key/value file that holds the session.
// An empty passphrase falls back to a random per-install key kept next to it.
func (s *Storage) OpenSessionFile(passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		key, err := s.localKey()
		if err != nil {
			return nil, err
		}
		passphrase = key
	}
	return NewEncryptedFileStore(s.SessionPath(), passphrase)
}

func (s *Storage) localKey() (string, error) {
	path := filepath.Join(s.dataDir, keyFile)

	data, err := os.ReadFile(path)
	if err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read local key: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate local key: %w", err)
	}
	key := hex.EncodeToString(raw)
	if err := writeFileAtomic(path, []byte(key+"\n")); err != nil {
		return "", fmt.Errorf("failed to write local key: %w", err)
	}
	return key, nil
}

// writeFileAtomic writes data to a temp file and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
