package services

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ds "github.com/oaiiae/contacts-rest/datastores"
)

func TestIDsByCount(t *testing.T) {
	assert.Equal(t, "1", IDsByCount(nil))
	assert.Equal(t, "3", IDsByCount([]*ds.Contact{{ID: "1"}, {ID: "2"}}))
}

func TestIDsBySequence(t *testing.T) {
	assert.Equal(t, "1", IDsBySequence(nil))
	assert.Equal(t, "3", IDsBySequence([]*ds.Contact{{ID: "1"}, {ID: "2"}}))
	assert.Equal(t, "8", IDsBySequence([]*ds.Contact{{ID: "7"}, {ID: "x"}, {ID: "2"}}))
	assert.Equal(t, "1", IDsBySequence([]*ds.Contact{{ID: "abc"}, {ID: "-4"}}))
	assert.Equal(t, "18446744073709551615", IDsBySequence([]*ds.Contact{{ID: "18446744073709551614"}}))
}

func TestIDsBySequenceExhausted(t *testing.T) {
	ctx := context.Background()
	s := NewContacts(ds.NewContactsInmem(
		&ds.Contact{ID: "18446744073709551614"},
		&ds.Contact{ID: "18446744073709551615"},
		&ds.Contact{ID: "1"},
	), IDsBySequence, nil)

	a, err := s.Create(ctx, ContactPatch{Name: ptr("A")})
	require.NoError(t, err)
	b, err := s.Create(ctx, ContactPatch{Name: ptr("B")})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	all, err := s.List(ctx, ListParams{})
	require.NoError(t, err)
	seen := map[string]int{}
	for _, c := range all {
		seen[c.ID]++
	}
	assert.Len(t, seen, 5)
}

func TestIDsByUUID(t *testing.T) {
	a, b := IDsByUUID(nil), IDsByUUID(nil)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 22)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	id, err := uuid.FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestIDScheme(t *testing.T) {
	for _, name := range []string{"", "count", "Sequence", "UUID"} {
		fn, err := IDScheme(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn, name)
	}
	_, err := IDScheme("random")
	require.Error(t, err)
}

// The count scheme hands out an id still in use once a contact other than
// the last one was deleted.
func TestIDsAfterDelete(t *testing.T) {
	ctx := context.Background()

	schemes := map[string]IDFunc{
		"count":    IDsByCount,
		"sequence": IDsBySequence,
		"uuid":     IDsByUUID,
	}
	for name, newID := range schemes {
		t.Run(name, func(t *testing.T) {
			s := NewContacts(ds.NewContactsInmem(), newID, nil)
			for range 3 {
				_, err := s.Create(ctx, ContactPatch{})
				require.NoError(t, err)
			}
			all, err := s.List(ctx, ListParams{})
			require.NoError(t, err)
			require.NoError(t, s.Delete(ctx, all[1].ID))

			created, err := s.Create(ctx, ContactPatch{Name: ptr("new")})
			require.NoError(t, err)

			all, err = s.List(ctx, ListParams{})
			require.NoError(t, err)
			seen := map[string]int{}
			for _, c := range all {
				seen[c.ID]++
			}
			if name == "count" {
				assert.Equal(t, 2, seen[created.ID], "count scheme reuses a live id")
			} else {
				assert.Equal(t, 1, seen[created.ID])
			}
		})
	}
}
