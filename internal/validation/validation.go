// Package validation checks the shape of contact payloads before they reach a store.
//
// Payloads are decoded JSON objects. Every rule first checks the JSON types of the recognized
// fields and then applies the field constraints. Unrecognized fields are dropped.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/model"
)

// Field names recognized in a contact payload.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldFavorite = "favorite"
)

// MessageNothingToUpdate is returned for update payloads without any recognized field.
const MessageNothingToUpdate = "body must have at least one field"

// Error describes the first violated constraint of a payload.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// createSchema holds the constraints for a new contact.
type createSchema struct {
	Name     *string `json:"name"     validate:"required,min=1"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Favorite *bool   `json:"favorite"`
}

// updateSchema holds the constraints for a partial update. Every field is optional.
type updateSchema struct {
	Name     *string `json:"name"     validate:"omitempty,min=1"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Favorite *bool   `json:"favorite"`
}

// favoriteSchema holds the constraints for toggling the favorite flag.
type favoriteSchema struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names the way clients spell them.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create validates the payload of a new contact. The name is required and must not be empty,
// email, phone and favorite are optional.
func Create(payload map[string]any) (model.ContactFields, error) {
	fields, err := decode(payload)
	if err != nil {
		return model.ContactFields{}, err
	}
	schema := createSchema{Name: fields.Name, Email: fields.Email, Phone: fields.Phone, Favorite: fields.Favorite}
	if err := check(schema); err != nil {
		return model.ContactFields{}, err
	}
	return fields, nil
}

// Update validates the payload of a partial update. At least one recognized field must be
// present. This is checked before any field level constraint.
func Update(payload map[string]any) (model.ContactFields, error) {
	if !hasRecognizedField(payload) {
		return model.ContactFields{}, &Error{Message: MessageNothingToUpdate}
	}
	fields, err := decode(payload)
	if err != nil {
		return model.ContactFields{}, err
	}
	schema := updateSchema{Name: fields.Name, Email: fields.Email, Phone: fields.Phone, Favorite: fields.Favorite}
	if err := check(schema); err != nil {
		return model.ContactFields{}, err
	}
	return fields, nil
}

// Favorite validates the payload of a favorite toggle. Only the favorite field is read, and it
// must be a boolean.
func Favorite(payload map[string]any) (bool, error) {
	var schema favoriteSchema
	if raw, ok := payload[FieldFavorite]; ok {
		b, ok := raw.(bool)
		if !ok {
			return false, typeError(FieldFavorite, "a boolean")
		}
		schema.Favorite = &b
	}
	if err := check(schema); err != nil {
		return false, err
	}
	return *schema.Favorite, nil
}

// hasRecognizedField returns true if the payload contains at least one known contact field.
func hasRecognizedField(payload map[string]any) bool {
	for _, key := range []string{FieldName, FieldEmail, FieldPhone, FieldFavorite} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

// decode converts the recognized fields of the payload into contact fields. Fields with the wrong
// JSON type, including null, are rejected.
func decode(payload map[string]any) (model.ContactFields, error) {
	var fields model.ContactFields
	var err error
	if fields.Name, err = stringField(payload, FieldName); err != nil {
		return fields, err
	}
	if fields.Email, err = stringField(payload, FieldEmail); err != nil {
		return fields, err
	}
	if fields.Phone, err = stringField(payload, FieldPhone); err != nil {
		return fields, err
	}
	if raw, ok := payload[FieldFavorite]; ok {
		b, ok := raw.(bool)
		if !ok {
			return fields, typeError(FieldFavorite, "a boolean")
		}
		fields.Favorite = &b
	}
	return fields, nil
}

func stringField(payload map[string]any, key string) (*string, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, typeError(key, "a string")
	}
	return &s, nil
}

func typeError(field string, kind string) *Error {
	return &Error{Field: field, Message: fmt.Sprintf("%q must be %s", field, kind)}
}

// check runs the struct constraints and converts the first violation into an Error.
func check(schema any) error {
	err := validate.Struct(schema)
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return &Error{Message: err.Error()}
	}
	first := violations[0]
	field := first.Field()
	switch first.Tag() {
	case "required":
		return &Error{Field: field, Message: fmt.Sprintf("%q is required", field)}
	case "min":
		return &Error{Field: field, Message: fmt.Sprintf("%q is not allowed to be empty", field)}
	default:
		return &Error{Field: field, Message: fmt.Sprintf("%q failed on the %q rule", field, first.Tag())}
	}
}
