package service

import (
	"errors"
	"fmt"
)

// Kind classifies the failures of the contact service.
type Kind int

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = iota
	// KindValidation means the request payload violates a validation rule.
	KindValidation
	// KindNotFound means the id is malformed or no contact has it.
	KindNotFound
	// KindUnavailable means the storage medium could not be read or written.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindUnavailable:
		return "storage unavailable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by every failing service call.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that do not come from the service count as unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindUnavailable
}

// MessageOf returns the client facing message of err.
func MessageOf(err error) string {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	return KindUnavailable.String()
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

var errNotFound = &Error{Kind: KindNotFound, Message: "contact not found"}

func unavailableError(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: KindUnavailable.String(), Err: err}
}
