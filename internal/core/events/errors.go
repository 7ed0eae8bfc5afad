package events

import (
	"errors"
	"fmt"
)

var (
	ErrNotInit   = errors.New("record is not an Init record")
	ErrEmptyType = errors.New("record has no type")
)

// UnknownEventKindError reports a wire type with no dispatch entry. The
// server may emit cosmetic kinds the client does not render, so callers
// drop these records instead of failing.
type UnknownEventKindError struct {
	Type string
	T    int64
}

func (e *UnknownEventKindError) Error() string {
	return fmt.Sprintf("unknown event kind %q at t=%d", e.Type, e.T)
}

// IsUnknownKind reports whether err is an UnknownEventKindError.
func IsUnknownKind(err error) bool {
	var target *UnknownEventKindError
	return errors.As(err, &target)
}

// MissingFieldError reports a required event parameter that is absent.
type MissingFieldError struct {
	Kind  Kind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Kind, e.Field)
}

// UnknownTypeError reports an event naming a static Type that the resource
// catalog does not define.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown element type %q", e.Name)
}

// MissingTypeError is the name dispatch code uses for UnknownTypeError.
type MissingTypeError = UnknownTypeError

// MalformedEventError wraps any failure raised while applying an event.
type MalformedEventError struct {
	T    int64
	Kind Kind
	Err  error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event %s at t=%d: %v", e.Kind, e.T, e.Err)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}
