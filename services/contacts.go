// Package services implements the contacts operations on top of a
// [ds.ContactsStore]. Every call loads the whole collection, works on it in
// memory and, for mutations, saves it back. Calls are not serialized:
// two concurrent mutations may lose one of the updates.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	ds "github.com/oaiiae/contacts-rest/datastores"
)

var ErrNotFound = errors.New("contact not found")

// ContactPatch holds the contact fields supplied by a client.
// Nil fields are left untouched on update and empty on create.
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p *ContactPatch) applyTo(c *ds.Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}

// ListParams narrows and orders [Contacts.List]. The zero value lists every
// contact in insertion order.
type ListParams struct {
	Query  string // case-insensitive substring of the name
	SortBy string // name, email or phone; empty keeps insertion order
}

type Contacts struct {
	Store  ds.ContactsStore
	NewID  IDFunc
	Logger *slog.Logger
}

func NewContacts(store ds.ContactsStore, newID IDFunc, logger *slog.Logger) *Contacts {
	return &Contacts{Store: store, NewID: newID, Logger: logger}
}

func (s *Contacts) List(ctx context.Context, params ListParams) ([]*ds.Contact, error) {
	contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(params.Query)); q != "" {
		contacts = slices.DeleteFunc(contacts, func(c *ds.Contact) bool {
			return !strings.Contains(strings.ToLower(c.Name), q)
		})
	}

	if params.SortBy != "" {
		key, err := sortKey(params.SortBy)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(contacts, func(a, b *ds.Contact) int {
			return cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
		})
	}

	return contacts, nil
}

var ErrInvalidSort = errors.New("invalid sort field")

func sortKey(field string) (func(*ds.Contact) string, error) {
	switch strings.ToLower(field) {
	case "name":
		return func(c *ds.Contact) string { return c.Name }, nil
	case "email":
		return func(c *ds.Contact) string { return c.Email }, nil
	case "phone":
		return func(c *ds.Contact) string { return c.Phone }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
}

func (s *Contacts) Get(ctx context.Context, id ds.ContactID) (*ds.Contact, error) {
	contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := index(contacts, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return contacts[i], nil
}

// Create appends a new contact built from patch and returns it.
// The id is always assigned by [Contacts.NewID].
func (s *Contacts) Create(ctx context.Context, patch ContactPatch) (*ds.Contact, error) {
	contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	contact := new(ds.Contact)
	patch.applyTo(contact)
	contact.ID = s.newID(contacts)

	err = s.save(ctx, append(contacts, contact))
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// Update merges the non-nil fields of patch onto the contact with the given id.
func (s *Contacts) Update(ctx context.Context, id ds.ContactID, patch ContactPatch) (*ds.Contact, error) {
	contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	i := index(contacts, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	patch.applyTo(contacts[i])

	err = s.save(ctx, contacts)
	if err != nil {
		return nil, err
	}
	return contacts[i], nil
}

// Delete removes every contact with the given id.
func (s *Contacts) Delete(ctx context.Context, id ds.ContactID) error {
	contacts, err := s.load(ctx)
	if err != nil {
		return err
	}

	n := len(contacts)
	contacts = slices.DeleteFunc(contacts, func(c *ds.Contact) bool { return c.ID == id })
	if len(contacts) == n {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	err = s.save(ctx, contacts)
	if err != nil {
		return err
	}
	s.logger().LogAttrs(ctx, slog.LevelDebug, "contact deleted",
		slog.String("id", id),
		slog.Int("remaining", len(contacts)),
	)
	return nil
}

func (s *Contacts) load(ctx context.Context) ([]*ds.Contact, error) {
	contacts, err := s.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return contacts, nil
}

func (s *Contacts) save(ctx context.Context, contacts []*ds.Contact) error {
	err := s.Store.Save(ctx, contacts)
	if err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	return nil
}

func (s *Contacts) newID(contacts []*ds.Contact) ds.ContactID {
	if s.NewID == nil {
		return IDsBySequence(contacts)
	}
	return s.NewID(contacts)
}

func (s *Contacts) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func index(contacts []*ds.Contact, id ds.ContactID) int {
	return slices.IndexFunc(contacts, func(c *ds.Contact) bool { return c.ID == id })
}
