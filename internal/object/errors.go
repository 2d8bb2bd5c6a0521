package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an object file does not exist in the store.
	ErrNotFound = errors.New("object not found")

	// ErrCorruptObject is returned when an object cannot be inflated or parsed.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrInvalidID is returned for an id that is not 40 lowercase hex characters.
	ErrInvalidID = errors.New("invalid object id")
)

// Error records the object and operation that failed.
type Error struct {
	Op  string
	ID  ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func corrupt(op string, id ID, format string, args ...interface{}) error {
	return &Error{Op: op, ID: id, Err: fmt.Errorf("%w: %s", ErrCorruptObject, fmt.Sprintf(format, args...))}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorrupt reports whether err is, or wraps, ErrCorruptObject.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptObject)
}
