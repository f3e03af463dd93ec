package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("not found")

// ValidationError carries the human-readable reasons a record was rejected.
// It never aborts list queries; mutations return it as a structured failure.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// ConflictError reports a uniqueness violation; the conflicting create
// is rejected and the store is left unchanged.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError reports that a referenced entity id did not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnknownFieldError reports an ordering spec naming a field the engine
// does not recognize. Unrecognized filter option keys are ignored instead,
// to keep the filter contract forward-compatible.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return "unknown field: " + e.Field
}
