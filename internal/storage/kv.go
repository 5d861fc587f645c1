package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// KeyValueStore persists string values under string keys.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// EncryptedFileStore keeps every value AES-GCM sealed in a single JSON file.
// The file is rewritten atomically on every change.
type EncryptedFileStore struct {
	path   string
	sealer *sealer
	mu     sync.Mutex
}

type kvFile struct {
	Version int                       `json:"version"`
	Values  map[string]*EncryptedData `json:"values"`
}

const kvFileVersion = 1

func NewEncryptedFileStore(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}

	s, err := newSealer([]byte(passphrase), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise encryption: %w", err)
	}

	return &EncryptedFileStore{path: path, sealer: s}, nil
}

func (s *EncryptedFileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return "", false, err
	}

	encData, ok := file.Values[key]
	if !ok {
		return "", false, nil
	}

	plaintext, err := s.sealer.open(key, encData)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %q: %w", key, err)
	}
	return string(plaintext), true, nil
}

func (s *EncryptedFileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	encData, err := s.sealer.seal(key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to encrypt %q: %w", key, err)
	}
	file.Values[key] = encData

	return s.write(file)
}

func (s *EncryptedFileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := file.Values[key]; !ok {
		return nil
	}
	delete(file.Values, key)

	return s.write(file)
}

func (s *EncryptedFileStore) read() (*kvFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &kvFile{Version: kvFileVersion, Values: make(map[string]*EncryptedData)}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var file kvFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", s.path, err)
	}
	if file.Values == nil {
		file.Values = make(map[string]*EncryptedData)
	}
	return &file, nil
}

func (s *EncryptedFileStore) write(file *kvFile) error {
	file.Version = kvFileVersion
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.path, err)
	}
	return writeFileAtomic(s.path, data)
}

// MemoryStore is a KeyValueStore that lives for the process only.
type MemoryStore struct {
	values map[string]string
	mu     sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
