// Package mongostore keeps contacts in a MongoDB collection, one document per contact. Every
// mutation is a single atomic operation on one document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// document is the stored form of a contact. Fields in the collection that are not listed here,
// like a version key, are never decoded and thus never exposed.
type document struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     *string       `bson:"email,omitempty"`
	Phone     *string       `bson:"phone,omitempty"`
	Favorite  bool          `bson:"favorite"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d document) contact() model.Contact {
	return model.Contact{
		Id:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Favorite:  d.Favorite,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// newDocument builds the document for a new contact.
func newDocument(id bson.ObjectID, fields model.ContactFields, now time.Time) document {
	var c model.Contact
	fields.Apply(&c)
	return document{
		ID:        id,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Favorite:  c.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// setDocument builds the $set part of an update. Only the set fields and updatedAt are written.
func setDocument(fields model.ContactFields, now time.Time) bson.D {
	set := bson.D{}
	if fields.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *fields.Name})
	}
	if fields.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *fields.Email})
	}
	if fields.Phone != nil {
		set = append(set, bson.E{Key: "phone", Value: *fields.Phone})
	}
	if fields.Favorite != nil {
		set = append(set, bson.E{Key: "favorite", Value: *fields.Favorite})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return set
}

// Store implements [store.Store] on a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

var _ store.Store = (*Store)(nil)
var _ store.Pinger = (*Store)(nil)

// Connect opens a client for the uri and returns a store on database.collection. The server is
// pinged once so that a wrong uri fails early.
func Connect(ctx context.Context, uri string, database string, collection string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect to mongodb: %w", store.ErrUnavailable, err)
	}
	s := New(client.Database(database).Collection(collection))
	s.client = client
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New returns a store on an existing collection. The caller owns the client.
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection, now: time.Now}
}

// Close disconnects the client if it was opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.collection.Database().Client().Ping(ctx, nil); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]model.Contact, error) {
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable("find contacts", err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode contacts", err)
	}
	contacts := make([]model.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.contact())
	}
	return contacts, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (model.Contact, bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.Contact{}, false, nil
	}
	return decodeSingle(s.collection.FindOne(ctx, byID(oid)), "find contact")
}

func (s *Store) Create(ctx context.Context, id string, fields model.ContactFields) (model.Contact, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("create contact: invalid object id %q: %w", id, err)
	}
	doc := newDocument(oid, fields, s.timestamp())
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Contact{}, store.ErrDuplicateID
		}
		return model.Contact{}, unavailable("insert contact", err)
	}
	return doc.contact(), nil
}

func (s *Store) Update(ctx context.Context, id string, fields model.ContactFields) (model.Contact, bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.Contact{}, false, nil
	}
	update := bson.D{{Key: "$set", Value: setDocument(fields, s.timestamp())}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)
	return decodeSingle(s.collection.FindOneAndUpdate(ctx, byID(oid), update, opts), "update contact")
}

func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) (model.Contact, bool, error) {
	return s.Update(ctx, id, model.ContactFields{Favorite: &favorite})
}

func (s *Store) Delete(ctx context.Context, id string) (model.Contact, bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return model.Contact{}, false, nil
	}
	return decodeSingle(s.collection.FindOneAndDelete(ctx, byID(oid)), "delete contact")
}

// timestamp returns the current time at the millisecond precision of BSON dates.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func decodeSingle(result *mongo.SingleResult, op string) (model.Contact, bool, error) {
	var doc document
	err := result.Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Contact{}, false, nil
	}
	if err != nil {
		return model.Contact{}, false, unavailable(op, err)
	}
	return doc.contact(), true, nil
}

func byID(oid bson.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: oid}}
}

// objectID parses the id. An id that is not an object id cannot match any document.
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	return oid, err == nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", store.ErrUnavailable, op, err)
}
