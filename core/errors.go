package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// StoreError reports a failure of the file store: I/O, lock contention past the retry bound,
// unreadable workbooks. The message is safe to log, not to show to clients.
type StoreError struct {
	Op       string
	Location string
	Err      error
}

func NewStoreError(op, location string, err error) error {
	return &StoreError{Op: op, Location: location, Err: err}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", err.Op, err.Location, err.Err)
}

func (err *StoreError) Unwrap() error { return err.Err }

// IsStoreError reports whether a StoreError is found in err's chain.
func IsStoreError(err error) bool {
	for err != nil {
		if _, ok := err.(*StoreError); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
