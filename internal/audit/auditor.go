package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"rhystmorgan/contactterm/internal/models"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = time.Minute
)

// Trail appends entries to a JSON-lines file. Entries are buffered and
// written once the batch fills, on the flush timer, or on Close.
type Trail struct {
	path       string
	batchSize  int
	batchMu    sync.Mutex
	batch      []Entry
	flushTimer *time.Timer
	fileMu     sync.Mutex
	now        func() time.Time
}

func NewTrail(path string) (*Trail, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	trail := &Trail{
		path:      path,
		batchSize: defaultBatchSize,
		batch:     make([]Entry, 0, defaultBatchSize),
		now:       time.Now,
	}

	trail.flushTimer = time.AfterFunc(defaultFlushInterval, func() {
		_ = trail.Flush()
	})

	return trail, nil
}

func (t *Trail) Path() string {
	return t.path
}

// RecordCreate logs a contact that the service accepted.
func (t *Trail) RecordCreate(created models.Contact) error {
	return t.append(Entry{
		ContactID: created.ID,
		Action:    ActionCreate,
		Changes:   Diff(models.Contact{}, created),
	})
}

// RecordUpdate logs the fields that changed between before and after.
func (t *Trail) RecordUpdate(before, after models.Contact) error {
	return t.append(Entry{
		ContactID: after.ID,
		Action:    ActionUpdate,
		Changes:   Diff(before, after),
	})
}

func (t *Trail) RecordDelete(removed models.Contact) error {
	return t.append(Entry{
		ContactID: removed.ID,
		Action:    ActionDelete,
		Details:   map[string]string{"name": removed.Name},
	})
}

func (t *Trail) RecordExport(format, path string, count int) error {
	return t.append(Entry{
		Action: ActionExport,
		Details: map[string]string{
			"format": format,
			"path":   path,
			"count":  fmt.Sprintf("%d", count),
		},
	})
}

func (t *Trail) append(entry Entry) error {
	entry.ID = uuid.NewString()
	entry.Timestamp = t.now().UTC()

	t.batchMu.Lock()
	t.batch = append(t.batch, entry)

	if len(t.batch) >= t.batchSize {
		t.batchMu.Unlock()
		return t.Flush()
	}
	t.batchMu.Unlock()

	return nil
}

// Flush writes all buffered entries.
func (t *Trail) Flush() error {
	t.batchMu.Lock()
	if len(t.batch) == 0 {
		t.batchMu.Unlock()
		return nil
	}

	if t.flushTimer != nil {
		t.flushTimer.Reset(defaultFlushInterval)
	}

	pending := make([]Entry, len(t.batch))
	copy(pending, t.batch)
	t.batch = t.batch[:0]
	t.batchMu.Unlock()

	t.fileMu.Lock()
	defer t.fileMu.Unlock()

	file, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, entry := range pending {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal audit entry: %w", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
	}

	return nil
}

// History returns every entry for contactID, or every entry when contactID
// is empty. Lines that fail to parse are skipped.
func (t *Trail) History(contactID string) ([]Entry, error) {
	if err := t.Flush(); err != nil {
		return nil, err
	}

	t.fileMu.Lock()
	defer t.fileMu.Unlock()

	file, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if contactID == "" || entry.ContactID == contactID {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log file: %w", err)
	}

	return entries, nil
}

// Close stops the flush timer and writes anything still buffered.
func (t *Trail) Close() error {
	if t.flushTimer != nil {
		t.flushTimer.Stop()
	}
	return t.Flush()
}

// Diff lists the contact fields whose values differ.
func Diff(before, after models.Contact) map[string]Change {
	changes := make(map[string]Change)
	compare := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes[field] = Change{OldValue: oldValue, NewValue: newValue}
		}
	}

	compare("name", before.Name, after.Name)
	compare("phone", before.Phone, after.Phone)
	compare("email", before.Email, after.Email)

	if len(changes) == 0 {
		return nil
	}
	return changes
}
