package datastores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

type (
	ContactID = string
	Contact   struct {
		ID    ContactID `json:"id"`
		Name  string    `json:"name"`
		Email string    `json:"email"`
		Phone string    `json:"phone"`
	}
)

// ContactsStore persists the whole contacts collection as a single document.
// Implementations do not lock: a Load followed by a Save may overwrite a
// concurrent Save (last writer wins).
type ContactsStore interface {
	Load(context.Context) ([]*Contact, error)
	Save(context.Context, []*Contact) error
}

var ErrCorruptDocument = errors.New("store: corrupt document")

// UnmarshalJSON decodes a contact object, keeping non-string scalars such as
// numbers as their JSON text. Unknown fields are dropped.
func (c *Contact) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	err := json.Unmarshal(b, &fields)
	if err != nil {
		return err
	}
	*c = Contact{
		ID:    text(fields["id"]),
		Name:  text(fields["name"]),
		Email: text(fields["email"]),
		Phone: text(fields["phone"]),
	}
	return nil
}

func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
