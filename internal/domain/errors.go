package domain

import "errors"

var (
	// ErrValidation marks input that failed domain validation.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write rejected because of current record state.
	ErrConflict = errors.New("conflict")
)
