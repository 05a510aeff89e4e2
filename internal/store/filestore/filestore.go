// Package filestore keeps all contacts in a single JSON file. Every mutation reads the whole
// file, changes it in memory and writes it back.
//
// All Store values on the same path share one lock, so concurrent mutations within a process
// are serialized and never lose each other's changes. Other processes must not write the file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
)

// locks maps absolute file paths to their *sync.RWMutex.
var locks sync.Map

func lockFor(path string) *sync.RWMutex {
	mu, _ := locks.LoadOrStore(path, new(sync.RWMutex))
	return mu.(*sync.RWMutex)
}

// Store implements [store.Store] on a JSON file.
type Store struct {
	path string
	mu   *sync.RWMutex
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)
var _ store.Pinger = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for the timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store on the file at path. The file does not need to exist; it is created by
// the first mutation.
func New(path string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve contacts file %s: %w", path, err)
	}
	s := &Store{path: abs, mu: lockFor(abs), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the file, if present, can be read and parsed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.read()
	return err
}

func (s *Store) ListAll(_ context.Context) ([]model.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *Store) GetByID(_ context.Context, id string) (model.Contact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contacts, err := s.read()
	if err != nil {
		return model.Contact{}, false, err
	}
	i := indexOf(contacts, id)
	if i < 0 {
		return model.Contact{}, false, nil
	}
	return contacts[i], true, nil
}

func (s *Store) Create(_ context.Context, id string, fields model.ContactFields) (model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return model.Contact{}, err
	}
	if indexOf(contacts, id) >= 0 {
		return model.Contact{}, store.ErrDuplicateID
	}
	now := s.timestamp()
	contact := model.Contact{Id: id, CreatedAt: now, UpdatedAt: now}
	fields.Apply(&contact)
	contacts = append(contacts, contact)
	if err := s.write(contacts); err != nil {
		return model.Contact{}, err
	}
	return contact, nil
}

func (s *Store) Update(_ context.Context, id string, fields model.ContactFields) (model.Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return model.Contact{}, false, err
	}
	i := indexOf(contacts, id)
	if i < 0 {
		return model.Contact{}, false, nil
	}
	fields.Apply(&contacts[i])
	contacts[i].UpdatedAt = s.timestamp()
	if err := s.write(contacts); err != nil {
		return model.Contact{}, false, err
	}
	return contacts[i], true, nil
}

func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) (model.Contact, bool, error) {
	return s.Update(ctx, id, model.ContactFields{Favorite: &favorite})
}

func (s *Store) Delete(_ context.Context, id string) (model.Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts, err := s.read()
	if err != nil {
		return model.Contact{}, false, err
	}
	i := indexOf(contacts, id)
	if i < 0 {
		return model.Contact{}, false, nil
	}
	deleted := contacts[i]
	contacts = slices.Delete(contacts, i, i+1)
	if err := s.write(contacts); err != nil {
		return model.Contact{}, false, err
	}
	return deleted, true, nil
}

// timestamp returns the current time in UTC, truncated to the precision that survives the JSON
// round trip unchanged.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// read loads the whole collection. A missing file is an empty collection.
func (s *Store) read() ([]model.Contact, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", store.ErrUnavailable, s.path, err)
	}
	contacts := []model.Contact{}
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", store.ErrUnavailable, s.path, err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}

// write replaces the whole collection. The data goes to a temporary file first, which is then
// renamed over the target.
func (s *Store) write(contacts []model.Contact) error {
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode contacts: %w", store.ErrUnavailable, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temporary file: %w", store.ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", store.ErrUnavailable, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", store.ErrUnavailable, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", store.ErrUnavailable, s.path, err)
	}
	return nil
}

func indexOf(contacts []model.Contact, id string) int {
	return slices.IndexFunc(contacts, func(c model.Contact) bool { return c.Id == id })
}
