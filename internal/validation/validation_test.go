package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreate validates a complete payload and expects all fields to be taken over.
func TestCreate(t *testing.T) {
	fields, err := Create(map[string]any{
		"name":     "Ada",
		"email":    "ada@example.com",
		"phone":    "+44 20 7946 0000",
		"favorite": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", *fields.Name)
	assert.Equal(t, "ada@example.com", *fields.Email)
	assert.Equal(t, "+44 20 7946 0000", *fields.Phone)
	assert.True(t, *fields.Favorite)
}

// TestCreateStripsUnknownFields expects that fields which are not part of a contact are dropped.
func TestCreateStripsUnknownFields(t *testing.T) {
	payload := map[string]any{"name": "Ada", "owner": "someone", "_id": "x"}
	fields, err := Create(payload)
	require.NoError(t, err)
	assert.Equal(t, "Ada", *fields.Name)
	assert.Nil(t, fields.Email)
	assert.Nil(t, fields.Phone)
	assert.Nil(t, fields.Favorite)
	assert.Len(t, payload, 3, "the payload must not be modified")
}

// TestCreateInvalid runs a number of invalid payloads and expects the first violation to be named.
func TestCreateInvalid(t *testing.T) {
	tests := []struct {
		payload map[string]any
		field   string
		message string
	}{
		{nil, "name", `"name" is required`},
		{map[string]any{}, "name", `"name" is required`},
		{map[string]any{"email": "ada@example.com"}, "name", `"name" is required`},
		{map[string]any{"name": ""}, "name", `"name" is not allowed to be empty`},
		{map[string]any{"name": 42.0}, "name", `"name" must be a string`},
		{map[string]any{"name": nil}, "name", `"name" must be a string`},
		{map[string]any{"name": "Ada", "phone": true}, "phone", `"phone" must be a string`},
		{map[string]any{"name": "Ada", "favorite": "yes"}, "favorite", `"favorite" must be a boolean`},
	}
	for _, test := range tests {
		_, err := Create(test.payload)
		var verr *Error
		require.ErrorAs(t, err, &verr, "payload: %v", test.payload)
		assert.Equal(t, test.field, verr.Field, "payload: %v", test.payload)
		assert.Equal(t, test.message, verr.Message, "payload: %v", test.payload)
	}
}

// TestUpdatePartial expects that only the fields present in the payload are set.
func TestUpdatePartial(t *testing.T) {
	fields, err := Update(map[string]any{"phone": "0815"})
	require.NoError(t, err)
	assert.Nil(t, fields.Name)
	assert.Nil(t, fields.Email)
	assert.Equal(t, "0815", *fields.Phone)
	assert.Nil(t, fields.Favorite)
}

// TestUpdateNothingToUpdate expects empty payloads and payloads without recognized fields to be
// rejected with the same message.
func TestUpdateNothingToUpdate(t *testing.T) {
	for _, payload := range []map[string]any{nil, {}, {"owner": "someone"}} {
		_, err := Update(payload)
		var verr *Error
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, MessageNothingToUpdate, verr.Message)
		assert.Empty(t, verr.Field)
	}
}

// TestUpdateInvalid expects field level violations to be reported.
func TestUpdateInvalid(t *testing.T) {
	_, err := Update(map[string]any{"favorite": "yes"})
	assert.EqualError(t, err, `"favorite" must be a boolean`)

	_, err = Update(map[string]any{"name": ""})
	assert.EqualError(t, err, `"name" is not allowed to be empty`)

	_, err = Update(map[string]any{"email": 1.0})
	assert.EqualError(t, err, `"email" must be a string`)
}

// TestFavorite expects both boolean values to be accepted and other keys to be ignored.
func TestFavorite(t *testing.T) {
	favorite, err := Favorite(map[string]any{"favorite": true})
	require.NoError(t, err)
	assert.True(t, favorite)

	favorite, err = Favorite(map[string]any{"favorite": false, "name": "ignored"})
	require.NoError(t, err)
	assert.False(t, favorite)
}

// TestFavoriteInvalid expects missing and non boolean values to be rejected.
func TestFavoriteInvalid(t *testing.T) {
	_, err := Favorite(map[string]any{})
	assert.EqualError(t, err, `"favorite" is required`)

	_, err = Favorite(map[string]any{"name": "Ada"})
	assert.EqualError(t, err, `"favorite" is required`)

	for _, value := range []any{"true", 1.0, nil} {
		_, err = Favorite(map[string]any{"favorite": value})
		assert.EqualError(t, err, `"favorite" must be a boolean`, "value: %v", value)
	}
}
