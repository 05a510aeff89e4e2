// Package service combines the validation rules, the identifier policy and a contact store into
// the operations used by the request handlers.
//
// The service holds no contact state and is safe for concurrent use. Every failure is an *Error
// of exactly one Kind.
package service

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/favorite-contacts/internal/identity"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/validation"
)

// maxIDAttempts is how often Create mints a new id after a collision.
const maxIDAttempts = 3

// Service implements the contact operations.
type Service struct {
	store store.Store
	ids   identity.Policy
}

// New returns a service on the store. The policy must match the ids the store accepts.
func New(s store.Store, ids identity.Policy) *Service {
	return &Service{store: s, ids: ids}
}

// Ping checks the storage medium if the store supports it.
func (s *Service) Ping(ctx context.Context) error {
	pinger, ok := s.store.(store.Pinger)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		return unavailableError(err)
	}
	return nil
}

// List returns all contacts.
func (s *Service) List(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, unavailableError(err)
	}
	return contacts, nil
}

// Get returns the contact with the id.
func (s *Service) Get(ctx context.Context, id string) (model.Contact, error) {
	if !s.ids.Valid(id) {
		return model.Contact{}, errNotFound
	}
	return found(s.store.GetByID(ctx, id))
}

// Create validates the payload and stores a new contact under a freshly minted id.
func (s *Service) Create(ctx context.Context, payload map[string]any) (model.Contact, error) {
	fields, err := validation.Create(payload)
	if err != nil {
		return model.Contact{}, validationError(err)
	}
	for attempt := 1; ; attempt++ {
		contact, err := s.store.Create(ctx, s.ids.NewID(), fields)
		if errors.Is(err, store.ErrDuplicateID) && attempt < maxIDAttempts {
			continue
		}
		if err != nil {
			return model.Contact{}, unavailableError(err)
		}
		return contact, nil
	}
}

// Update validates the payload and merges its fields into the contact with the id.
func (s *Service) Update(ctx context.Context, id string, payload map[string]any) (model.Contact, error) {
	if !s.ids.Valid(id) {
		return model.Contact{}, errNotFound
	}
	fields, err := validation.Update(payload)
	if err != nil {
		return model.Contact{}, validationError(err)
	}
	return found(s.store.Update(ctx, id, fields))
}

// SetFavorite validates the payload and sets the favorite flag of the contact with the id.
func (s *Service) SetFavorite(ctx context.Context, id string, payload map[string]any) (model.Contact, error) {
	if !s.ids.Valid(id) {
		return model.Contact{}, errNotFound
	}
	favorite, err := validation.Favorite(payload)
	if err != nil {
		return model.Contact{}, validationError(err)
	}
	return found(s.store.SetFavorite(ctx, id, favorite))
}

// Delete removes the contact with the id and returns its last version.
func (s *Service) Delete(ctx context.Context, id string) (model.Contact, error) {
	if !s.ids.Valid(id) {
		return model.Contact{}, errNotFound
	}
	return found(s.store.Delete(ctx, id))
}

// found translates the result of a single contact store call.
func found(contact model.Contact, ok bool, err error) (model.Contact, error) {
	if err != nil {
		return model.Contact{}, unavailableError(err)
	}
	if !ok {
		return model.Contact{}, errNotFound
	}
	return contact, nil
}

// CheckID returns a not found error if the id can never belong to a contact. Handlers call it
// before reading a request body, so that a malformed id wins over a malformed body.
func (s *Service) CheckID(id string) error {
	if !s.ids.Valid(id) {
		return errNotFound
	}
	return nil
}
