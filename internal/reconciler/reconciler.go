package reconciler

import (
	"context"
	"log/slog"
	"sync"

	"rhystmorgan/contactterm/internal/models"
	"rhystmorgan/contactterm/internal/validation"
)

// ContactService is the remote authority for the contact collection.
type ContactService interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
	CreateContact(ctx context.Context, fields models.ContactFields) (models.ContactPatch, bool, error)
	UpdateContact(ctx context.Context, id string, changes models.ContactPatch) (models.ContactPatch, bool, error)
	DeleteContact(ctx context.Context, id string) error
}

// Recorder receives every mutation the service accepted.
type Recorder interface {
	RecordCreate(created models.Contact) error
	RecordUpdate(before, after models.Contact) error
	RecordDelete(removed models.Contact) error
}

// Observer is told about every change with the full current value.
type Observer interface {
	ContactsChanged(contacts []models.Contact)
	EditSlotChanged(id string, editing bool)
}

// ErrBusy is returned when an overlapping request for the same target is
// already in flight. No request is issued.
var ErrBusy = validation.NewValidationError("", validation.ErrorBusy, "Another request for this contact is still in progress.")

const (
	keyCollection = "collection"
	keyLoad       = "load"
)

func contactKey(id string) string {
	return "contact:" + id
}

// Config holds configuration for creating a Reconciler.
type Config struct {
	Service ContactService
	// Validator checks fields before any request. If nil, a default is used.
	Validator *validation.ContactValidator
	// Recorder is optional.
	Recorder Recorder
	// Observer is optional.
	Observer Observer
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Reconciler owns the local contact cache and the edit slot. Every mutation
// goes to the service first; the cache is only patched after success.
type Reconciler struct {
	service   ContactService
	validator *validation.ContactValidator
	recorder  Recorder
	observer  Observer
	logger    *slog.Logger

	mu       sync.Mutex
	contacts *models.ContactList
	editID   string
	editing  bool
	draft    models.ContactFields
	inflight map[string]bool
	epoch    uint64
}

func New(config Config) *Reconciler {
	validator := config.Validator
	if validator == nil {
		validator = validation.NewContactValidator()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		service:   config.Service,
		validator: validator,
		recorder:  config.Recorder,
		observer:  config.Observer,
		logger:    logger,
		contacts:  models.NewContactList(nil),
		inflight:  make(map[string]bool),
	}
}

// SetObserver replaces the observer. Passing nil removes it.
func (r *Reconciler) SetObserver(observer Observer) {
	r.mu.Lock()
	r.observer = observer
	r.mu.Unlock()
}

func (r *Reconciler) Contacts() []models.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contacts.Snapshot()
}

// EditSlot returns the ID being edited, if any.
func (r *Reconciler) EditSlot() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editID, r.editing
}

// Draft returns the field values captured when editing started.
func (r *Reconciler) Draft() (models.ContactFields, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draft, r.editing
}

// Busy reports whether any request is in flight.
func (r *Reconciler) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight) > 0
}

// InFlight reports whether a new request for id would be refused as busy.
// An empty id asks about creating a contact.
func (r *Reconciler) InFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyCollection
	if id != "" {
		key = contactKey(id)
	}
	return r.inflight[key] || r.inflight[keyLoad]
}

// StartEdit makes contact the edit target. It reports false, leaving the
// slot alone, when the contact is not in the cache.
func (r *Reconciler) StartEdit(contact models.Contact) bool {
	r.mu.Lock()
	if contact.ID == "" || !r.contacts.Contains(contact.ID) {
		r.mu.Unlock()
		return false
	}
	r.editID = contact.ID
	r.editing = true
	r.draft = contact.Fields()
	r.mu.Unlock()

	r.notifyEditSlot()
	return true
}

func (r *Reconciler) CancelEdit() {
	r.mu.Lock()
	changed := r.endEditLocked()
	r.mu.Unlock()

	if changed {
		r.notifyEditSlot()
	}
}

// Reset returns the edit slot to idle.
func (r *Reconciler) Reset() {
	r.CancelEdit()
}

// Clear empties the cache and the edit slot. Results of requests issued
// before the call are discarded when they arrive.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	r.endEditLocked()
	r.contacts = models.NewContactList(nil)
	r.inflight = make(map[string]bool)
	r.epoch++
	r.mu.Unlock()

	r.notifyContacts()
	r.notifyEditSlot()
}

// Submit creates a contact when idle and updates the edit target otherwise.
func (r *Reconciler) Submit(ctx context.Context, fields models.ContactFields) error {
	r.mu.Lock()
	id, editing := r.editID, r.editing
	r.mu.Unlock()

	if editing {
		return r.Update(ctx, id, fields.Patch())
	}
	return r.Create(ctx, fields)
}

// Load replaces the cache with the service's collection.
func (r *Reconciler) Load(ctx context.Context) error {
	epoch, err := r.acquire(keyLoad)
	if err != nil {
		return err
	}
	defer r.release(keyLoad, epoch)

	contacts, err := r.service.ListContacts(ctx)
	if err != nil {
		r.logger.Warn("failed to load contacts", "error", err)
		return err
	}

	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		r.logger.Debug("discarding contacts loaded before reset")
		return nil
	}
	r.contacts = models.NewContactList(contacts)
	editCleared := r.editing && !r.contacts.Contains(r.editID)
	if editCleared {
		r.endEditLocked()
	}
	count := r.contacts.Len()
	r.mu.Unlock()

	r.logger.Info("loaded contacts", "count", count)
	r.notifyContacts()
	if editCleared {
		r.notifyEditSlot()
	}
	return nil
}

// Create adds a contact. An empty name is rejected before any request.
func (r *Reconciler) Create(ctx context.Context, fields models.ContactFields) error {
	fields = fields.Trimmed()
	if err := r.validator.ValidateContact(fields).Err(); err != nil {
		return err
	}

	epoch, err := r.acquire(keyCollection)
	if err != nil {
		return err
	}
	defer r.release(keyCollection, epoch)

	patch, found, err := r.service.CreateContact(ctx, fields)
	if err != nil {
		r.logger.Warn("failed to create contact", "error", err)
		return err
	}

	created := models.ContactFromFields("", fields)
	if found {
		created = created.Merge(patch.ID, patch)
	}

	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		return nil
	}
	r.contacts.Prepend(created)
	r.mu.Unlock()

	r.logger.Info("created contact", "id", created.ID)
	r.record(func(rec Recorder) error { return rec.RecordCreate(created) })
	r.notifyContacts()
	return nil
}

// Update sends the fields present in changes for id and merges the echoed
// record into the cache. Absent fields are not sent, and fields missing from
// the echo keep their cached values. A present but blank name is rejected
// before any request. On failure the edit slot is left as it was so the user
// can retry.
func (r *Reconciler) Update(ctx context.Context, id string, changes models.ContactPatch) error {
	changes = changes.Trimmed()
	if err := r.validator.ValidateUpdate(changes).Err(); err != nil {
		return err
	}

	key := contactKey(id)
	epoch, err := r.acquire(key)
	if err != nil {
		return err
	}
	defer r.release(key, epoch)

	patch, found, err := r.service.UpdateContact(ctx, id, changes)
	if err != nil {
		r.logger.Warn("failed to update contact", "id", id, "error", err)
		return err
	}
	if !found {
		patch = models.ContactPatch{}
	}

	targetID := patch.ID
	if targetID == "" {
		targetID = id
	}

	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		return nil
	}
	var before, after models.Contact
	existing := r.contacts.FindByID(targetID)
	patched := existing != nil
	if patched {
		before = *existing
		r.contacts.Patch(targetID, patch)
		after = *r.contacts.FindByID(targetID)
	}
	editCleared := r.editing && r.editID == id
	if editCleared {
		r.endEditLocked()
	}
	r.mu.Unlock()

	r.logger.Info("updated contact", "id", targetID)
	if patched {
		r.record(func(rec Recorder) error { return rec.RecordUpdate(before, after) })
	}
	r.notifyContacts()
	if editCleared {
		r.notifyEditSlot()
	}
	return nil
}

// Delete removes id from the service and then from the cache.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	key := contactKey(id)
	epoch, err := r.acquire(key)
	if err != nil {
		return err
	}
	defer r.release(key, epoch)

	if err := r.service.DeleteContact(ctx, id); err != nil {
		r.logger.Warn("failed to delete contact", "id", id, "error", err)
		return err
	}

	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		return nil
	}
	var removed models.Contact
	if existing := r.contacts.FindByID(id); existing != nil {
		removed = *existing
	} else {
		removed = models.Contact{ID: id}
	}
	r.contacts.Remove(id)
	editCleared := r.editing && r.editID == id
	if editCleared {
		r.endEditLocked()
	}
	r.mu.Unlock()

	r.logger.Info("deleted contact", "id", id)
	r.record(func(rec Recorder) error { return rec.RecordDelete(removed) })
	r.notifyContacts()
	if editCleared {
		r.notifyEditSlot()
	}
	return nil
}

// acquire marks key as in flight. A load conflicts with every other request.
func (r *Reconciler) acquire(key string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inflight[key] {
		return 0, ErrBusy
	}
	if key == keyLoad && len(r.inflight) > 0 {
		return 0, ErrBusy
	}
	if key != keyLoad && r.inflight[keyLoad] {
		return 0, ErrBusy
	}

	r.inflight[key] = true
	return r.epoch, nil
}

func (r *Reconciler) release(key string, epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.epoch == epoch {
		delete(r.inflight, key)
	}
}

func (r *Reconciler) endEditLocked() bool {
	if !r.editing {
		return false
	}
	r.editID = ""
	r.editing = false
	r.draft = models.ContactFields{}
	return true
}

func (r *Reconciler) record(fn func(Recorder) error) {
	if r.recorder == nil {
		return
	}
	if err := fn(r.recorder); err != nil {
		r.logger.Warn("failed to write audit entry", "error", err)
	}
}

func (r *Reconciler) notifyContacts() {
	r.mu.Lock()
	observer := r.observer
	contacts := r.contacts.Snapshot()
	r.mu.Unlock()

	if observer != nil {
		observer.ContactsChanged(contacts)
	}
}

func (r *Reconciler) notifyEditSlot() {
	r.mu.Lock()
	observer := r.observer
	id, editing := r.editID, r.editing
	r.mu.Unlock()

	if observer != nil {
		observer.EditSlotChanged(id, editing)
	}
}
