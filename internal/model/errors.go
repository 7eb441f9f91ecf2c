package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrDuplicate      = errors.New("duplicate error")
	ErrLimit          = errors.New("limit error")
	ErrNotFound       = errors.New("not found")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// Error carries a user-facing message for one of the error kinds above.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func DuplicateError(message string) error {
	return &Error{Kind: ErrDuplicate, Message: message}
}

func LimitError(message string) error {
	return &Error{Kind: ErrLimit, Message: message}
}

func NotFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Infrastructure wraps a storage or driver failure that is not part of the domain taxonomy.
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrInfrastructure, Message: fmt.Sprintf("%s: %v", op, err), Err: err}
}

// IsDomain reports whether err belongs to one of the domain kinds (everything but
// infrastructure failures and unknown errors).
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrLimit) ||
		errors.Is(err, ErrNotFound)
}
