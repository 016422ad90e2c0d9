package datastores

import (
	"context"
	"sync"
)

// ContactsInmem implements [ContactsStore] in memory.
// Contacts are copied on the way in and out so callers never share them.
type ContactsInmem struct {
	mu       sync.Mutex
	contacts []Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

func NewContactsInmem(cs ...*Contact) *ContactsInmem {
	s := new(ContactsInmem)
	s.set(cs)
	return s
}

func (s *ContactsInmem) Load(ctx context.Context) ([]*Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, &c)
	}
	return contacts, nil
}

func (s *ContactsInmem) Save(ctx context.Context, cs []*Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(cs)
	return nil
}

func (s *ContactsInmem) set(cs []*Contact) {
	s.contacts = make([]Contact, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			s.contacts = append(s.contacts, *c)
		}
	}
}
