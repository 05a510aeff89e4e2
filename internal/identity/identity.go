// Package identity decides what a contact id looks like and how new ids are minted.
package identity

import (
	"encoding/base64"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Policy produces new contact ids and checks the syntax of incoming ones. An id that fails Valid
// can never belong to a stored contact.
type Policy interface {
	NewID() string
	Valid(id string) bool
}

// Generated mints short opaque ids: a random UUID in unpadded base64url, 22 characters long.
// Every non-empty string is a valid id, existence is decided by the store alone.
type Generated struct{}

var _ Policy = Generated{}

func (Generated) NewID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

func (Generated) Valid(id string) bool {
	return id != ""
}

// ObjectID uses MongoDB object ids in their 24 character hex form.
type ObjectID struct{}

var _ Policy = ObjectID{}

func (ObjectID) NewID() string {
	return bson.NewObjectID().Hex()
}

func (ObjectID) Valid(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
