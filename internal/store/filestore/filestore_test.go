package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
)

var fixedTime = time.Date(2024, time.March, 2, 10, 30, 0, 0, time.UTC)

// newTestStore creates a store on a fresh file in a temporary directory.
func newTestStore(t *testing.T, opts ...Option) *Store {
	s, err := New(filepath.Join(t.TempDir(), "contacts.json"), opts...)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T {
	return &v
}

// TestListAllMissingFile expects an empty, non-nil collection when the file does not exist yet.
func TestListAllMissingFile(t *testing.T) {
	s := newTestStore(t)
	contacts, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

// TestCreateAndGet creates a contact and looks it up again.
func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t, WithClock(func() time.Time { return fixedTime }))
	ctx := context.Background()

	created, err := s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada"), Email: ptr("ada@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.Id)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "ada@example.com", *created.Email)
	assert.Nil(t, created.Phone)
	assert.False(t, created.Favorite)
	assert.Equal(t, fixedTime, created.CreatedAt)
	assert.Equal(t, fixedTime, created.UpdatedAt)

	found, ok, err := s.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, created, found)
}

// TestCreateDuplicateID expects a second contact with the same id to be rejected.
func TestCreateDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada")})
	require.NoError(t, err)
	_, err = s.Create(ctx, "abc", model.ContactFields{Name: ptr("Grace")})
	assert.ErrorIs(t, err, store.ErrDuplicateID)
}

// TestFileLayout expects the file to hold a plain JSON array of contacts.
func TestFileLayout(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(context.Background(), "abc", model.ContactFields{Name: ptr("Ada"), Phone: ptr("0815")})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "abc", raw[0]["id"])
	assert.Equal(t, "Ada", raw[0]["name"])
	assert.Equal(t, "0815", raw[0]["phone"])
	assert.Equal(t, false, raw[0]["favorite"])
	assert.NotContains(t, raw[0], "email")
	assert.Contains(t, raw[0], "createdAt")
	assert.Contains(t, raw[0], "updatedAt")
}

// TestUpdate merges a partial update and expects the untouched fields to keep their values.
func TestUpdate(t *testing.T) {
	now := fixedTime
	s := newTestStore(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	_, err := s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada"), Email: ptr("ada@example.com")})
	require.NoError(t, err)

	now = fixedTime.Add(time.Hour)
	updated, ok, err := s.Update(ctx, "abc", model.ContactFields{Phone: ptr("0815")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", updated.Id)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "ada@example.com", *updated.Email)
	assert.Equal(t, "0815", *updated.Phone)
	assert.Equal(t, fixedTime, updated.CreatedAt)
	assert.Equal(t, now, updated.UpdatedAt)

	found, _, err := s.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, updated, found)
}

// TestUpdateUnknownID expects no contact to be created by an update.
func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, ok, err := s.Update(ctx, "nope", model.ContactFields{Name: ptr("Ada")})
	require.NoError(t, err)
	assert.False(t, ok)

	contacts, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

// TestSetFavorite toggles the flag twice and expects the other fields to stay the same.
func TestSetFavorite(t *testing.T) {
	s := newTestStore(t, WithClock(func() time.Time { return fixedTime }))
	ctx := context.Background()
	created, err := s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada"), Phone: ptr("0815")})
	require.NoError(t, err)

	on, ok, err := s.SetFavorite(ctx, "abc", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, on.Favorite)

	off, ok, err := s.SetFavorite(ctx, "abc", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, off.Favorite)
	assert.Equal(t, created, off)

	_, ok, err = s.SetFavorite(ctx, "nope", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestDelete removes a contact and expects a second delete to find nothing.
func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada")})
	require.NoError(t, err)
	_, err = s.Create(ctx, "def", model.ContactFields{Name: ptr("Grace")})
	require.NoError(t, err)

	deleted, ok, err := s.Delete(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, created, deleted)

	_, ok, err = s.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Delete(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	contacts, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "def", contacts[0].Id)
}

// TestCorruptFile expects a file that is not a JSON array to be reported as unavailable, never
// as an absent contact.
func TestCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not JSON"), 0600))
	ctx := context.Background()

	_, err := s.ListAll(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, _, err = s.GetByID(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, err = s.Create(ctx, "abc", model.ContactFields{Name: ptr("Ada")})
	assert.ErrorIs(t, err, store.ErrUnavailable)
	_, _, err = s.Delete(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, s.Ping(ctx), store.ErrUnavailable)
}

// TestUnreadableFile expects a path that cannot be read as a file to be reported as unavailable.
func TestUnreadableFile(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.ListAll(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

// TestConcurrentUpdatesDifferentIDs issues many overlapping updates on different contacts
// without any serialization by the caller. Every one of them must be visible afterwards; a plain
// read-modify-write of the file would lose some of them.
func TestConcurrentUpdatesDifferentIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const count = 50
	for i := 0; i < count; i++ {
		_, err := s.Create(ctx, fmt.Sprintf("id-%d", i), model.ContactFields{Name: ptr("before")})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := s.Update(ctx, fmt.Sprintf("id-%d", i), model.ContactFields{Name: ptr(fmt.Sprintf("after-%d", i))})
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	contacts, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, count)
	for _, contact := range contacts {
		assert.Equal(t, "after-"+contact.Id[len("id-"):], contact.Name)
	}
}

// TestConcurrentCreatesSharedFile creates contacts through two stores on the same file at the
// same time and expects none of them to get lost.
func TestConcurrentCreatesSharedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	first, err := New(path)
	require.NoError(t, err)
	second, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	const count = 25
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := first.Create(ctx, fmt.Sprintf("first-%d", i), model.ContactFields{Name: ptr("Ada")})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := second.Create(ctx, fmt.Sprintf("second-%d", i), model.ContactFields{Name: ptr("Grace")})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	contacts, err := first.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 2*count)
}
