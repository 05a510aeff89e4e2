// Package model contains the JSON types of the contacts REST API as seen by HTTP clients.
package model

import "time"

// Contact is a contact as returned by the service.
type Contact struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactRequest is the body of a POST or PUT request. Fields that are nil are not sent.
type ContactRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
}

// FavoriteRequest is the body of a PATCH request on the favorite flag.
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}
