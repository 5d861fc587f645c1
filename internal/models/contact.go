package models

import (
	"strings"
)

// Contact is a record owned by the remote service. ID is assigned remotely
// and is the record's identity; the other fields are free-form.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ContactFields holds the user-editable values of a contact, as submitted
// to create or update requests.
type ContactFields struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ContactPatch is a partially known contact: the changes sent with an
// update, or the record echoed back by the service. Nil fields are absent;
// they are left out of the request body and keep their prior value when
// merged.
type ContactPatch struct {
	ID    string  `json:"-"`
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

type ContactList struct {
	Contacts []Contact `json:"contacts"`
}

func NewContactFields(name, phone, email string) ContactFields {
	return ContactFields{
		Name:  strings.TrimSpace(name),
		Phone: strings.TrimSpace(phone),
		Email: strings.TrimSpace(email),
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f ContactFields) Trimmed() ContactFields {
	return NewContactFields(f.Name, f.Phone, f.Email)
}

// Patch returns a patch carrying every field, as submitted by a full form.
func (f ContactFields) Patch() ContactPatch {
	return ContactPatch{Name: &f.Name, Phone: &f.Phone, Email: &f.Email}
}

// Trimmed returns a copy with surrounding whitespace removed from every
// present field.
func (p ContactPatch) Trimmed() ContactPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return ContactPatch{ID: p.ID, Name: trim(p.Name), Phone: trim(p.Phone), Email: trim(p.Email)}
}

// Empty reports whether the patch carries no fields.
func (p ContactPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Email == nil
}

// Fields returns the editable snapshot of the contact.
func (c Contact) Fields() ContactFields {
	return ContactFields{Name: c.Name, Phone: c.Phone, Email: c.Email}
}

// ContactFromFields builds a contact carrying id and the given fields.
func ContactFromFields(id string, f ContactFields) Contact {
	return Contact{ID: id, Name: f.Name, Phone: f.Phone, Email: f.Email}
}

// Merge applies the known fields of p over c. The ID is taken from id.
func (c Contact) Merge(id string, p ContactPatch) Contact {
	merged := c
	merged.ID = id
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Phone != nil {
		merged.Phone = *p.Phone
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	return merged
}

// DisplayName falls back to a placeholder for records without a name.
func (c Contact) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return "contact"
	}
	return c.Name
}

func NewContactList(contacts []Contact) *ContactList {
	cl := &ContactList{Contacts: make([]Contact, 0, len(contacts))}
	seen := make(map[string]bool, len(contacts))
	for _, contact := range contacts {
		if contact.ID != "" {
			if seen[contact.ID] {
				continue
			}
			seen[contact.ID] = true
		}
		cl.Contacts = append(cl.Contacts, contact)
	}
	return cl
}

// Prepend puts contact at the front. An existing entry with the same ID is
// dropped so the list stays unique by ID.
func (cl *ContactList) Prepend(contact Contact) {
	contacts := make([]Contact, 0, len(cl.Contacts)+1)
	contacts = append(contacts, contact)
	for _, existing := range cl.Contacts {
		if contact.ID != "" && existing.ID == contact.ID {
			continue
		}
		contacts = append(contacts, existing)
	}
	cl.Contacts = contacts
}

// Patch merges p over the entry whose ID is id. It reports whether an
// entry matched.
func (cl *ContactList) Patch(id string, p ContactPatch) bool {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			cl.Contacts[i] = contact.Merge(id, p)
			return true
		}
	}
	return false
}

// Remove drops the entry with the given ID and reports whether it existed.
func (cl *ContactList) Remove(id string) bool {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			cl.Contacts = append(cl.Contacts[:i:i], cl.Contacts[i+1:]...)
			return true
		}
	}
	return false
}

func (cl *ContactList) FindByID(id string) *Contact {
	for i, contact := range cl.Contacts {
		if contact.ID == id {
			return &cl.Contacts[i]
		}
	}
	return nil
}

func (cl *ContactList) Contains(id string) bool {
	return cl.FindByID(id) != nil
}

func (cl *ContactList) Len() int {
	return len(cl.Contacts)
}

// Snapshot returns a copy of the entries that callers may keep.
func (cl *ContactList) Snapshot() []Contact {
	contacts := make([]Contact, len(cl.Contacts))
	copy(contacts, cl.Contacts)
	return contacts
}
