package model

import "time"

// Contact is the data structure for a person that we know.
// All fields with the exception of Id and Name are optional.
type Contact struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactFields holds the client settable fields of a contact. A nil field was not part of the
// request and must be left untouched.
type ContactFields struct {
	Name     *string
	Email    *string
	Phone    *string
	Favorite *bool
}

// Empty returns true if no field is set.
func (f ContactFields) Empty() bool {
	return f.Name == nil && f.Email == nil && f.Phone == nil && f.Favorite == nil
}

// Apply merges the set fields into the contact. The id and the timestamps are never touched.
func (f ContactFields) Apply(c *Contact) {
	if f.Name != nil {
		c.Name = *f.Name
	}
	if f.Email != nil {
		c.Email = f.Email
	}
	if f.Phone != nil {
		c.Phone = f.Phone
	}
	if f.Favorite != nil {
		c.Favorite = *f.Favorite
	}
}
