package services

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	ds "github.com/oaiiae/contacts-rest/datastores"
)

// IDFunc returns the id for a contact about to be appended to contacts.
type IDFunc func(contacts []*ds.Contact) ds.ContactID

// IDsByCount numbers a new contact after the collection size.
//
// Ids are reused after a deletion: with ids "1","2","3", deleting "2" and
// creating a contact yields a second "3". Kept for compatibility with
// existing data files only.
func IDsByCount(contacts []*ds.Contact) ds.ContactID {
	return strconv.Itoa(len(contacts) + 1)
}

// IDsBySequence numbers a new contact one past the largest numeric id in
// the collection. Non-numeric ids are ignored. On a collection that never
// had deletions it agrees with [IDsByCount]. Once an id reaches the largest
// uint64 the sequence is exhausted and [IDsByUUID] is used instead.
func IDsBySequence(contacts []*ds.Contact) ds.ContactID {
	var last uint64
	for _, c := range contacts {
		n, err := strconv.ParseUint(c.ID, 10, 64)
		if err == nil && n > last {
			last = n
		}
	}
	if last == math.MaxUint64 {
		return IDsByUUID(contacts)
	}
	return strconv.FormatUint(last+1, 10)
}

// IDsByUUID returns a random [UUID] as text.
func IDsByUUID([]*ds.Contact) ds.ContactID {
	id := newUUID()
	b, _ := id.MarshalText()
	return string(b)
}

// IDScheme selects an [IDFunc] by name: count, sequence or uuid.
func IDScheme(name string) (IDFunc, error) {
	switch strings.ToLower(name) {
	case "count":
		return IDsByCount, nil
	case "", "sequence":
		return IDsBySequence, nil
	case "uuid":
		return IDsByUUID, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", name)
	}
}

// UUID is a [uuid.UUID] that uses [base64.RawURLEncoding]
// to marshal to text.
type UUID uuid.UUID

func newUUID() UUID { return UUID(uuid.Must(uuid.NewV7())) }

func (*UUID) encoding() *base64.Encoding { return base64.RawURLEncoding }

func (id *UUID) AppendText(b []byte) ([]byte, error) {
	return id.encoding().AppendEncode(b, id[:]), nil
}

func (id *UUID) MarshalText() ([]byte, error) {
	return id.AppendText(nil)
}
