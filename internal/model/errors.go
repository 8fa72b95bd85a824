package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages. Callers match with errors.Is.
var (
	// ErrNotFound is returned when a candidate id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when inserting a duplicate id.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput is returned for malformed or empty input, such as
	// finalizing an attempt with zero answers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned when an operation does not apply to
	// the record's current lifecycle state, such as resuming a
	// completed attempt.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnsupportedFormat is returned when the resume extractor
	// receives a file type it cannot parse. Never fatal to a session;
	// the caller falls back to manual contact entry.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// ContactIncompleteError reports which contact fields are still empty.
// It unwraps to ErrInvalidInput.
type ContactIncompleteError struct {
	Missing []string
}

func (e *ContactIncompleteError) Error() string {
	return fmt.Sprintf("contact info incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ContactIncompleteError) Unwrap() error {
	return ErrInvalidInput
}
