package remote

import (
	"bytes"
	"encoding/json"
	"strconv"

	"rhystmorgan/contactterm/internal/models"
)

// Response shapes accepted from the service. Everything that branches on
// shape lives here; callers only see canonical models.

var (
	recordEnvelopeKeys = []string{"contact", "created", "updated", "data"}
	listEnvelopeKeys   = []string{"contacts", "data"}
	idKeys             = []string{"id", "_id"}
)

type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// scalarString reads a JSON string or number as a string.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

func (o object) str(key string) (string, bool) {
	raw, ok := o[key]
	if !ok {
		return "", false
	}
	return scalarString(raw)
}

func (o object) id() string {
	for _, key := range idKeys {
		if id, ok := o.str(key); ok && id != "" {
			return id
		}
	}
	return ""
}

// NormalizePatch maps a record object onto a patch; fields missing from the
// object stay nil. The alternate primary key "_id" is folded onto ID.
func NormalizePatch(raw json.RawMessage) (models.ContactPatch, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return models.ContactPatch{}, false
	}
	patch := models.ContactPatch{ID: obj.id()}
	if name, ok := obj.str("name"); ok {
		patch.Name = &name
	}
	if phone, ok := obj.str("phone"); ok {
		patch.Phone = &phone
	}
	if email, ok := obj.str("email"); ok {
		patch.Email = &email
	}
	return patch, true
}

// NormalizeContact maps a record object onto a Contact.
func NormalizeContact(raw json.RawMessage) (models.Contact, bool) {
	patch, ok := NormalizePatch(raw)
	if !ok {
		return models.Contact{}, false
	}
	return models.Contact{}.Merge(patch.ID, patch), true
}

// unwrapRecord finds the record in a create/update response: nested under
// one of the envelope keys, or the body itself.
func unwrapRecord(raw json.RawMessage) json.RawMessage {
	obj, ok := decodeObject(raw)
	if !ok {
		return nil
	}
	for _, key := range recordEnvelopeKeys {
		if nested, ok := obj[key]; ok {
			if _, isObj := decodeObject(nested); isObj {
				return nested
			}
		}
	}
	return raw
}

// NormalizeRecordResponse extracts the created or updated record. The
// boolean is false when the response carries no record at all.
func NormalizeRecordResponse(raw json.RawMessage) (models.ContactPatch, bool) {
	record := unwrapRecord(raw)
	if record == nil {
		return models.ContactPatch{}, false
	}
	return NormalizePatch(record)
}

// NormalizeContactList accepts a bare array or an array nested under a
// conventional field. Any other shape is an empty collection. Entries that
// are not objects are skipped.
func NormalizeContactList(raw json.RawMessage) []models.Contact {
	items := raw
	if !isArray(items) {
		items = nil
		if obj, ok := decodeObject(raw); ok {
			for _, key := range listEnvelopeKeys {
				if nested, ok := obj[key]; ok && isArray(nested) {
					items = nested
					break
				}
			}
		}
	}
	if items == nil {
		return []models.Contact{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(items, &entries); err != nil {
		return []models.Contact{}
	}
	contacts := make([]models.Contact, 0, len(entries))
	for _, entry := range entries {
		if contact, ok := NormalizeContact(entry); ok {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// NormalizeToken finds the bearer token at the top level or nested under
// "data". An absent token is the empty string.
func NormalizeToken(raw json.RawMessage) string {
	obj, ok := decodeObject(raw)
	if !ok {
		return ""
	}
	for _, key := range []string{"token", "accessToken"} {
		if token, ok := obj.str(key); ok && token != "" {
			return token
		}
	}
	if nested, ok := obj["data"]; ok {
		if data, ok := decodeObject(nested); ok {
			if token, ok := data.str("token"); ok {
				return token
			}
		}
	}
	return ""
}
