// Package store defines the persistence contract for contacts. The backends live in the
// sub packages filestore, mongostore and sqlstore.
package store

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
)

// ErrUnavailable is wrapped by every error caused by an unreachable or corrupt storage medium.
var ErrUnavailable = errors.New("storage unavailable")

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("contact id already exists")

// Store persists contacts. Operations on a single id return found == false instead of an error
// when no contact has that id. Errors always wrap ErrUnavailable, except ErrDuplicateID.
type Store interface {
	// ListAll returns all contacts. The result is empty, not nil, for an empty collection.
	ListAll(ctx context.Context) ([]model.Contact, error)

	// GetByID returns the contact with the id.
	GetByID(ctx context.Context, id string) (c model.Contact, found bool, err error)

	// Create stores a new contact with the id and the fields. Favorite defaults to false. The
	// timestamps are set by the store.
	Create(ctx context.Context, id string, fields model.ContactFields) (model.Contact, error)

	// Update merges the set fields into an existing contact and returns the new version. It
	// never creates a contact.
	Update(ctx context.Context, id string, fields model.ContactFields) (c model.Contact, found bool, err error)

	// SetFavorite is Update restricted to the favorite flag.
	SetFavorite(ctx context.Context, id string, favorite bool) (c model.Contact, found bool, err error)

	// Delete removes the contact and returns its last stored version.
	Delete(ctx context.Context, id string) (c model.Contact, found bool, err error)
}

// Pinger is implemented by stores that can check whether their medium is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
